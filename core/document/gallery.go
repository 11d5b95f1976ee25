package document

import (
	"fmt"
	"sort"
	"strings"
)

const (
	AllCountries     = "Todos"
	AllMethodologies = "Todas"

	browseCountryFallback = "Outros"
	searchCountryFallback = "Localização não inf."
	detailCountryFallback = "Localização não informada"

	defaultMethodology = "Geral"
	defaultTag         = "Inovação"
	cardButtonText     = "Ver Detalhes"
)

var cardImages = [2]string{"1544396821-4dd40b938ad3", "1503676260728-1c00da094a0b"}

type (
	FilterMetadata struct {
		Country     string   `json:"country"`
		Methodology string   `json:"methodology"`
		Problems    []string `json:"problems"`
	}

	CardFront struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Tag      string `json:"tag"`
		ImageSrc string `json:"image_src"`
	}

	CardBack struct {
		Description string `json:"description"`
		Details     string `json:"details"`
		ButtonText  string `json:"button_text"`
	}

	Card struct {
		ID             int64          `json:"id"`
		FilterMetadata FilterMetadata `json:"filter_metadata"`
		Front          CardFront      `json:"front"`
		Back           CardBack       `json:"back"`
	}

	Detail struct {
		Document
		SchoolName string `json:"school_name"`
		Country    string `json:"country"`
		ImageSrc   string `json:"image_src"`
	}

	Filter struct {
		Country     string `query:"country"`
		Methodology string `query:"methodology"`
	}

	Options struct {
		Countries     []string `json:"countries"`
		Methodologies []string `json:"methodologies"`
	}
)

func cardImage(n int64, size string) string {
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("https://images.unsplash.com/photo-%s?%s&fit=crop&q=80", cardImages[n%2], size)
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// NewCard maps a document to its gallery card. index picks the card image.
func NewCard(doc Document, index int, countryFallback string) Card {
	meta := doc.Metadata
	school, country := meta.SchoolAndCountry(countryFallback)

	methodology := meta.PilarInovacao
	if methodology == "" {
		methodology = defaultMethodology
	}
	tag := meta.PilarInovacao
	if tag == "" {
		tag = defaultTag
	}
	problems := meta.GatilhosComportamentais
	if problems == nil {
		problems = []string{}
	}

	return Card{
		ID: doc.ID,
		FilterMetadata: FilterMetadata{
			Country:     country,
			Methodology: methodology,
			Problems:    problems,
		},
		Front: CardFront{
			Title:    school,
			Subtitle: country,
			Tag:      tag,
			ImageSrc: cardImage(int64(index), "w=400&h=300"),
		},
		Back: CardBack{
			Description: strings.Join(firstN(meta.GatilhosComportamentais, 3), ", "),
			Details:     strings.Join(firstN(meta.CompetenciasBNCC, 2), ", "),
			ButtonText:  cardButtonText,
		},
	}
}

func NewDetail(doc Document) Detail {
	school, country := doc.Metadata.SchoolAndCountry(detailCountryFallback)
	return Detail{
		Document:   doc,
		SchoolName: school,
		Country:    country,
		ImageSrc:   cardImage(doc.ID, "w=1200&h=600"),
	}
}

// Apply keeps the cards matching both the country and the methodology.
// Blank values and the "all" literals match everything.
func (f Filter) Apply(cards []Card) []Card {
	filtered := make([]Card, 0, len(cards))
	for _, c := range cards {
		matchCountry := f.Country == "" || f.Country == AllCountries || c.FilterMetadata.Country == f.Country
		matchMethodology := f.Methodology == "" || f.Methodology == AllMethodologies || c.FilterMetadata.Methodology == f.Methodology
		if matchCountry && matchMethodology {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterOptions lists the sorted, unique countries and methodologies of cards,
// each prefixed by its "all" literal.
func FilterOptions(cards []Card) Options {
	return Options{
		Countries:     uniqueSorted(AllCountries, cards, func(c Card) string { return c.FilterMetadata.Country }),
		Methodologies: uniqueSorted(AllMethodologies, cards, func(c Card) string { return c.FilterMetadata.Methodology }),
	}
}

func uniqueSorted(all string, cards []Card, value func(Card) string) []string {
	seen := make(map[string]struct{}, len(cards))
	vals := make([]string, 0, len(cards))
	for _, c := range cards {
		v := value(c)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return append([]string{all}, vals...)
}
