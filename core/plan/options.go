package plan

import (
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	appfs "github.com/oinstituto/atlas/fs"
)

const optionsFile = "assets/form_options.yaml"

type (
	Vibe struct {
		ID          string `yaml:"id" json:"id"`
		Label       string `yaml:"label" json:"label"`
		Emoji       string `yaml:"emoji" json:"emoji"`
		Description string `yaml:"description" json:"description"`
	}

	// Options is the catalog of choices shown by the form.
	Options struct {
		Disciplines []string `yaml:"disciplines" json:"disciplines"`
		Grades      []string `yaml:"grades" json:"grades"`
		Vibes       []Vibe   `yaml:"vibes" json:"vibes"`
		Spaces      []string `yaml:"spaces" json:"spaces"`
		Groupings   []string `yaml:"groupings" json:"groupings"`
		Challenges  []string `yaml:"challenges" json:"challenges"`
	}
)

var (
	options     Options
	optionsErr  error
	optionsInit sync.Once
)

// LoadOptions parses the embedded catalog once.
func LoadOptions() (Options, error) {
	optionsInit.Do(func() {
		raw, err := appfs.FS.ReadFile(optionsFile)
		if err != nil {
			optionsErr = errors.Wrap(err, "reading form options")
			return
		}
		options, optionsErr = ParseOptions(raw)
	})
	return options, optionsErr
}

func ParseOptions(raw []byte) (Options, error) {
	var opts Options
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return Options{}, errors.Wrap(err, "parsing form options")
	}
	return opts, nil
}
