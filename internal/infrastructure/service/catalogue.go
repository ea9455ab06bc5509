package service

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

type catalogueFile struct {
	Doctorates []struct {
		Acronym     string `yaml:"acronym"`
		Year        int    `yaml:"year"`
		Title       string `yaml:"title"`
		Commission  string `yaml:"commission"`
		Campus      string `yaml:"campus"`
		Institution string `yaml:"institution"`
	} `yaml:"doctorates"`
	Scholarships []struct {
		ID    string `yaml:"id"`
		Short string `yaml:"short"`
		Long  string `yaml:"long"`
	} `yaml:"scholarships"`
	ExternalPromoters []string `yaml:"external_promoters"`
}

// Catalogue answers the doctorate, scholarship and promoter translators from
// a static YAML document. It is read once and never changes.
type Catalogue struct {
	doctorates   map[shared.TrainingID]proposition.Doctorate
	scholarships map[string]proposition.Scholarship
	external     map[shared.PersonID]bool
}

// DefaultCatalogue returns the embedded catalogue.
func DefaultCatalogue() *Catalogue {
	c, err := ParseCatalogue(defaultCatalogue)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalogue reads a catalogue file.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes a catalogue document.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	c := &Catalogue{
		doctorates:   make(map[shared.TrainingID]proposition.Doctorate, len(f.Doctorates)),
		scholarships: make(map[string]proposition.Scholarship, len(f.Scholarships)),
		external:     make(map[shared.PersonID]bool, len(f.ExternalPromoters)),
	}
	for _, d := range f.Doctorates {
		id := shared.TrainingID{Acronym: d.Acronym, Year: d.Year}
		if _, dup := c.doctorates[id]; dup {
			return nil, fmt.Errorf("parse catalogue: duplicate doctorate %s-%d", d.Acronym, d.Year)
		}
		c.doctorates[id] = proposition.Doctorate{
			Training:    id,
			Title:       d.Title,
			Commission:  d.Commission,
			Campus:      d.Campus,
			Institution: d.Institution,
		}
	}
	for _, s := range f.Scholarships {
		c.scholarships[s.ID] = proposition.Scholarship{ID: s.ID, Short: s.Short, Long: s.Long}
	}
	for _, p := range f.ExternalPromoters {
		c.external[shared.PersonID(p)] = true
	}
	return c, nil
}

// Doctorates exposes the catalogue as a proposition.DoctorateTranslator.
func (c *Catalogue) Doctorates() DoctorateTranslator {
	return DoctorateTranslator{c}
}

// Scholarships exposes the catalogue as a proposition.ScholarshipTranslator.
func (c *Catalogue) Scholarships() ScholarshipTranslator {
	return ScholarshipTranslator{c}
}

// IsExternal implements supervision.PromoterTranslator. People absent from
// the external list belong to the institution.
func (c *Catalogue) IsExternal(_ context.Context, person shared.PersonID) (bool, error) {
	return c.external[person], nil
}

// DoctorateTranslator reads doctorates from a Catalogue.
type DoctorateTranslator struct {
	c *Catalogue
}

// Get implements proposition.DoctorateTranslator.
func (t DoctorateTranslator) Get(_ context.Context, training shared.TrainingID) (proposition.Doctorate, error) {
	d, ok := t.c.doctorates[training]
	if !ok {
		return proposition.Doctorate{}, proposition.ErrDoctorateNotFound.Withf("%s-%d", training.Acronym, training.Year)
	}
	return d, nil
}

// ScholarshipTranslator reads scholarships from a Catalogue.
type ScholarshipTranslator struct {
	c *Catalogue
}

// Get implements proposition.ScholarshipTranslator.
func (t ScholarshipTranslator) Get(_ context.Context, id string) (proposition.Scholarship, error) {
	s, ok := t.c.scholarships[id]
	if !ok {
		return proposition.Scholarship{}, proposition.ErrScholarshipNotFound.Withf("%s", id)
	}
	return s, nil
}
