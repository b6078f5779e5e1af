// Package catalog provides the embedded question catalogs of every
// assessment program.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"maturity-assessment-backend/internal/scoring"
)

//go:embed data/*.yaml
var files embed.FS

// Program identifies a questionnaire.
type Program string

const (
	DigitalMaturity      Program = "digital-maturity"
	InnovationConformity Program = "innovation-conformity"
	Governance           Program = "governance"
	SocialPact           Program = "social-pact"
)

// Organization types a question can target.
const (
	TargetBoth        = "both"
	TargetCompany     = "company"
	TargetPublicAdmin = "public_admin"
)

var ErrUnknownProgram = errors.New("unknown program")

var programs = []Program{DigitalMaturity, InnovationConformity, Governance, SocialPact}

var aliases = map[string]Program{
	"iso56002":       InnovationConformity,
	"iso-56002":      InnovationConformity,
	"patto-di-senso": SocialPact,
	"patto_di_senso": SocialPact,
	"digital":        DigitalMaturity,
}

// Programs lists the available programs in display order.
func Programs() []Program {
	out := make([]Program, len(programs))
	copy(out, programs)
	return out
}

// ParseProgram validates s and resolves legacy aliases. An empty string
// selects the digital maturity program.
func ParseProgram(s string) (Program, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DigitalMaturity, nil
	}
	for _, p := range programs {
		if string(p) == s {
			return p, nil
		}
	}
	if p, ok := aliases[s]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProgram, s)
}

// Question is a catalog question with its presentation fields.
type Question struct {
	ID          uint             `json:"id" yaml:"-"`
	Category    string           `json:"category" yaml:"category"`
	Subcategory string           `json:"subcategory" yaml:"subcategory"`
	Text        string           `json:"text" yaml:"text"`
	Hint        string           `json:"hint" yaml:"hint"`
	Weight      float64          `json:"weight" yaml:"weight"`
	Order       int              `json:"order" yaml:"order"`
	TargetType  string           `json:"target_type" yaml:"target_type"`
	Options     []scoring.Option `json:"options" yaml:"options"`
}

// VisibleTo reports whether the question applies to orgType. An empty
// orgType sees every question.
func (q Question) VisibleTo(orgType string) bool {
	return Visible(q.TargetType, orgType)
}

// Visible reports whether a question targeting targetType applies to
// orgType.
func Visible(targetType, orgType string) bool {
	return orgType == "" || targetType == "" || targetType == TargetBoth || targetType == orgType
}

// UnmarshalYAML applies scoring.DefaultWeight when the weight key is
// absent. An explicit zero is kept.
func (q *Question) UnmarshalYAML(value *yaml.Node) error {
	type plain Question
	p := plain{Weight: scoring.DefaultWeight}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// Catalog is the decoded questionnaire of one program. Loaded catalogs are
// shared and must be treated as read-only.
type Catalog struct {
	Program    Program    `json:"program" yaml:"program"`
	Title      string     `json:"title" yaml:"title"`
	Categories []string   `json:"categories" yaml:"categories"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

type entry struct {
	once    sync.Once
	catalog *Catalog
	err     error
}

var cache = func() map[Program]*entry {
	m := make(map[Program]*entry, len(programs))
	for _, p := range programs {
		m[p] = &entry{}
	}
	return m
}()

// Load returns the catalog of p, decoding it on first use.
func Load(p Program) (*Catalog, error) {
	e, ok := cache[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, p)
	}
	e.once.Do(func() {
		e.catalog, e.err = decode(p)
	})
	return e.catalog, e.err
}

func decode(p Program) (*Catalog, error) {
	b, err := files.ReadFile("data/" + string(p) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", p, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", p, err)
	}
	if c.Program != p {
		return nil, fmt.Errorf("catalog %s declares program %q", p, c.Program)
	}

	declared := make(map[string]bool, len(c.Categories))
	for _, name := range c.Categories {
		declared[name] = true
	}
	sort.SliceStable(c.Questions, func(i, j int) bool {
		return c.Questions[i].Order < c.Questions[j].Order
	})
	for i := range c.Questions {
		q := &c.Questions[i]
		q.ID = uint(i + 1)
		if !declared[q.Category] {
			return nil, fmt.Errorf("catalog %s: question %d uses undeclared category %q", p, q.ID, q.Category)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("catalog %s: question %d has no options", p, q.ID)
		}
		if q.TargetType == "" {
			q.TargetType = TargetBoth
		}
	}
	return &c, nil
}

// EngineQuestions converts the catalog to the scoring engine's input.
func (c *Catalog) EngineQuestions() []scoring.Question {
	out := make([]scoring.Question, len(c.Questions))
	for i, q := range c.Questions {
		out[i] = q.Engine()
	}
	return out
}

// ForTarget returns the questions visible to orgType in catalog order.
func (c *Catalog) ForTarget(orgType string) []Question {
	var out []Question
	for _, q := range c.Questions {
		if q.VisibleTo(orgType) {
			out = append(out, q)
		}
	}
	return out
}

// Engine converts q to the scoring engine's question type.
func (q Question) Engine() scoring.Question {
	opts := make([]scoring.Option, len(q.Options))
	copy(opts, q.Options)
	return scoring.Question{
		ID:          q.ID,
		Category:    q.Category,
		Subcategory: q.Subcategory,
		Weight:      q.Weight,
		Options:     opts,
	}
}
