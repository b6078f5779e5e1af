package service

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"maturity-assessment-backend/internal/catalog"
	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/internal/scoring"
)

// ProgramInfo describes one questionnaire.
type ProgramInfo struct {
	Program       catalog.Program `json:"program"`
	Title         string          `json:"title"`
	Categories    []string        `json:"categories"`
	QuestionCount int             `json:"question_count"`
}

type QuestionService interface {
	SeedCatalogs(ctx context.Context) error
	ListQuestions(ctx context.Context, program, orgType string) ([]model.Question, error)
	EngineQuestions(ctx context.Context, program catalog.Program) ([]scoring.Question, error)
	Categories(program string) ([]string, error)
	Programs() ([]ProgramInfo, error)
}

type questionService struct {
	questionRepo repository.QuestionRepository
}

func NewQuestionService(questionRepo repository.QuestionRepository) QuestionService {
	return &questionService{questionRepo: questionRepo}
}

func resolveProgram(name string) (catalog.Program, *catalog.Catalog, error) {
	p, err := catalog.ParseProgram(name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidProgram, name)
	}
	c, err := catalog.Load(p)
	if err != nil {
		return "", nil, err
	}
	return p, c, nil
}

// SeedCatalogs stores every embedded catalog whose program has no
// questions yet.
func (s *questionService) SeedCatalogs(ctx context.Context) error {
	for _, p := range catalog.Programs() {
		c, err := catalog.Load(p)
		if err != nil {
			return err
		}
		rows := make([]model.Question, len(c.Questions))
		for i, q := range c.Questions {
			rows[i] = model.Question{
				Program:     string(p),
				Category:    q.Category,
				Subcategory: q.Subcategory,
				Text:        q.Text,
				Hint:        q.Hint,
				Options:     datatypes.NewJSONSlice(q.Options),
				Weight:      q.Weight,
				SortOrder:   q.Order,
				TargetType:  q.TargetType,
			}
		}
		n, err := s.questionRepo.SeedProgram(ctx, string(p), rows)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", p, err)
		}
		if n > 0 {
			slog.Info("seeded questions", "program", p, "count", n)
		}
	}
	return nil
}

// ListQuestions returns the program's questions visible to orgType.
func (s *questionService) ListQuestions(ctx context.Context, program, orgType string) ([]model.Question, error) {
	p, _, err := resolveProgram(program)
	if err != nil {
		return nil, err
	}
	all, err := s.questionRepo.ListByProgram(ctx, string(p))
	if err != nil {
		return nil, err
	}
	out := make([]model.Question, 0, len(all))
	for _, q := range all {
		if catalog.Visible(q.TargetType, orgType) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *questionService) EngineQuestions(ctx context.Context, program catalog.Program) ([]scoring.Question, error) {
	questions, err := s.questionRepo.ListByProgram(ctx, string(program))
	if err != nil {
		return nil, err
	}
	return model.EngineQuestions(questions), nil
}

func (s *questionService) Categories(program string) ([]string, error) {
	_, c, err := resolveProgram(program)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(c.Categories))
	copy(out, c.Categories)
	return out, nil
}

func (s *questionService) Programs() ([]ProgramInfo, error) {
	var out []ProgramInfo
	for _, p := range catalog.Programs() {
		c, err := catalog.Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ProgramInfo{
			Program:       p,
			Title:         c.Title,
			Categories:    append([]string(nil), c.Categories...),
			QuestionCount: len(c.Questions),
		})
	}
	return out, nil
}
