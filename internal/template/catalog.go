package template

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/kova/internal/milestone"
	"github.com/MrJamesThe3rd/kova/internal/validate"
)

//go:embed defaults.yaml
var defaultCatalog []byte

type catalogFile struct {
	Templates []catalogTemplate `yaml:"templates"`
}

type catalogTemplate struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Items       []catalogItem `yaml:"items"`
}

type catalogItem struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Percentage  string `yaml:"percentage"`
}

// DefaultCatalog returns the built-in default templates.
func DefaultCatalog() ([]*Template, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

// LoadCatalog parses a YAML template catalogue. Items are numbered in file
// order and every template must split to 100%.
func LoadCatalog(r io.Reader) ([]*Template, error) {
	var file catalogFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding catalogue: %w", err)
	}

	seen := make(map[string]bool, len(file.Templates))
	templates := make([]*Template, 0, len(file.Templates))

	for _, ct := range file.Templates {
		name := strings.TrimSpace(ct.Name)
		if name == "" {
			return nil, errors.New("catalogue template without a name")
		}

		if seen[name] {
			return nil, fmt.Errorf("duplicate catalogue template %q", name)
		}

		seen[name] = true

		t := &Template{Name: name, Description: validate.OptionalText(&ct.Description), IsDefault: true}

		for i, ci := range ct.Items {
			pct, err := decimal.NewFromString(strings.TrimSpace(ci.Percentage))
			if err != nil {
				return nil, fmt.Errorf("template %q item %d: invalid percentage %q", name, i+1, ci.Percentage)
			}

			t.Items = append(t.Items, Item{
				Title:       strings.TrimSpace(ci.Title),
				Description: validate.OptionalText(&ci.Description),
				Percentage:  pct,
				OrderIndex:  i + 1,
			})
		}

		if err := milestone.ValidateSplit(t.Split()); err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}

		templates = append(templates, t)
	}

	return templates, nil
}
