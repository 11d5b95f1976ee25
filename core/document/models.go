package document

import "strings"

// Metadata is the JSON metadata extracted for every school episode.
type Metadata struct {
	Titulo                  string   `json:"titulo"` // "Name - City/Country"
	Temporada               int      `json:"temporada,omitempty"`
	Episodio                int      `json:"episodio,omitempty"`
	PilarInovacao           string   `json:"pilar_inovacao,omitempty"`
	GatilhosComportamentais []string `json:"gatilhos_comportamentais,omitempty"`
	GatilhosConteudo        []string `json:"gatilhos_conteudo,omitempty"`
	CompetenciasBNCC        []string `json:"competencias_bncc,omitempty"`
}

// SchoolAndCountry splits the title on "-": the school is the first part and the
// country the last one. countryFallback is used when the title has a single part.
func (m Metadata) SchoolAndCountry(countryFallback string) (school, country string) {
	parts := strings.Split(m.Titulo, "-")
	school = strings.TrimSpace(parts[0])
	country = countryFallback
	if len(parts) > 1 {
		country = strings.TrimSpace(parts[len(parts)-1])
	}
	return school, country
}

type Document struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"-"`
}

// Match is a document found by similarity search.
type Match struct {
	Document
	Similarity float64 `json:"similarity"`
}
