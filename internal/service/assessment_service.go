package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"maturity-assessment-backend/internal/catalog"
	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/report"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/internal/scoring"
	"maturity-assessment-backend/utilities"
)

// ReportView is the stored result of a completed assessment.
type ReportView struct {
	Report        string                 `json:"report"`
	Scores        map[string]float64     `json:"scores"`
	MaturityLevel *float64               `json:"maturity_level"`
	MaturityLabel string                 `json:"maturity_label"`
	GapAnalysis   map[string]scoring.Gap `json:"gap_analysis"`
}

type AssessmentService interface {
	CreateAssessment(ctx context.Context, orgID uint, program string) (*model.Assessment, error)
	ListAssessments(ctx context.Context, orgID uint) ([]model.Assessment, error)
	GetAssessment(ctx context.Context, orgID, id uint) (*model.Assessment, error)
	SubmitAssessment(ctx context.Context, orgID, id uint, answers scoring.AnswerSet) (*model.Assessment, error)
	GetReport(ctx context.Context, orgID, id uint) (*ReportView, error)
	WriteReportPDF(ctx context.Context, orgID, id uint, w io.Writer) error
	RegenerateReport(ctx context.Context, id uint) (*model.Assessment, error)
	GetProgress(ctx context.Context, orgID uint, program string) (*ProgressData, error)
}

type assessmentService struct {
	assessmentRepo repository.AssessmentRepository
	orgRepo        repository.OrganizationRepository
	questions      QuestionService
	bus            *utilities.EventBus
	now            func() time.Time
}

func NewAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	orgRepo repository.OrganizationRepository,
	questions QuestionService,
	bus *utilities.EventBus,
) AssessmentService {
	return &assessmentService{
		assessmentRepo: assessmentRepo,
		orgRepo:        orgRepo,
		questions:      questions,
		bus:            bus,
		now:            time.Now,
	}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

func (s *assessmentService) CreateAssessment(ctx context.Context, orgID uint, program string) (*model.Assessment, error) {
	p, err := catalog.ParseProgram(program)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProgram, program)
	}
	assessment := &model.Assessment{
		OrganizationID: orgID,
		Program:        string(p),
		Status:         model.StatusInProgress,
		Responses:      datatypes.NewJSONType(scoring.AnswerSet{Answers: []scoring.Answer{}}),
		Scores:         datatypes.NewJSONType(map[string]float64{}),
		GapAnalysis:    datatypes.NewJSONType(map[string]scoring.Gap{}),
	}
	if err := s.assessmentRepo.CreateAssessment(ctx, assessment); err != nil {
		return nil, fmt.Errorf("creating assessment: %w", err)
	}
	return assessment, nil
}

func (s *assessmentService) ListAssessments(ctx context.Context, orgID uint) ([]model.Assessment, error) {
	return s.assessmentRepo.ListByOrganization(ctx, orgID)
}

func (s *assessmentService) GetAssessment(ctx context.Context, orgID, id uint) (*model.Assessment, error) {
	a, err := s.assessmentRepo.GetOrganizationAssessment(ctx, orgID, id)
	if err != nil {
		return nil, notFound(err, ErrAssessmentNotFound)
	}
	return a, nil
}

// SubmitAssessment scores the answers, renders the narrative report and
// completes the assessment.
func (s *assessmentService) SubmitAssessment(ctx context.Context, orgID, id uint, answers scoring.AnswerSet) (*model.Assessment, error) {
	a, err := s.GetAssessment(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if a.Completed() {
		return nil, ErrAssessmentCompleted
	}
	if answers.Answers == nil {
		answers.Answers = []scoring.Answer{}
	}

	a.Responses = datatypes.NewJSONType(answers)
	if err := s.evaluate(ctx, a); err != nil {
		return nil, err
	}
	now := s.now()
	a.Status = model.StatusCompleted
	a.CompletedAt = &now

	if err := s.assessmentRepo.SaveAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("saving assessment: %w", err)
	}
	slog.Info("assessment completed", "assessment_id", a.ID, "organization_id", a.OrganizationID,
		"program", a.Program, "maturity", a.MaturityLevel)

	s.publish(utilities.EventAssessmentCompleted, a)
	return a, nil
}

// evaluate recomputes the result and report of a from its stored responses.
func (s *assessmentService) evaluate(ctx context.Context, a *model.Assessment) error {
	program, err := catalog.ParseProgram(a.Program)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProgram, a.Program)
	}
	questions, err := s.questions.EngineQuestions(ctx, program)
	if err != nil {
		return fmt.Errorf("loading questions: %w", err)
	}

	a.ApplyResult(scoring.Analyze(a.Responses.Data().Answers, questions))

	in, err := s.reportInput(ctx, a)
	if err != nil {
		return err
	}
	md, err := report.Markdown(in)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	a.Report = md
	return nil
}

func (s *assessmentService) reportInput(ctx context.Context, a *model.Assessment) (report.Input, error) {
	return buildReportInput(ctx, s.orgRepo, s.questions, a)
}

func buildReportInput(ctx context.Context, orgRepo repository.OrganizationRepository, questions QuestionService, a *model.Assessment) (report.Input, error) {
	org, err := orgRepo.GetOrganizationByID(ctx, a.OrganizationID)
	if err != nil {
		return report.Input{}, notFound(err, ErrOrganizationNotFound)
	}
	categories, err := questions.Categories(a.Program)
	if err != nil {
		return report.Input{}, err
	}
	return report.Input{
		Program: catalog.Program(a.Program),
		Organization: report.Organization{
			Name:   org.Name,
			Type:   org.Type,
			Sector: org.Sector,
			Size:   org.Size,
		},
		Result:     a.Result(),
		Categories: categories,
	}, nil
}

func (s *assessmentService) publish(event string, a *model.Assessment) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event, utilities.AssessmentEvent{
		AssessmentID:   a.ID,
		OrganizationID: a.OrganizationID,
		Program:        a.Program,
	})
}

func (s *assessmentService) completedAssessment(ctx context.Context, orgID, id uint) (*model.Assessment, error) {
	a, err := s.GetAssessment(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !a.Completed() {
		return nil, ErrAssessmentNotCompleted
	}
	return a, nil
}

func (s *assessmentService) GetReport(ctx context.Context, orgID, id uint) (*ReportView, error) {
	a, err := s.completedAssessment(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return &ReportView{
		Report:        a.Report,
		Scores:        a.Scores.Data(),
		MaturityLevel: a.MaturityLevel,
		MaturityLabel: a.MaturityLabel,
		GapAnalysis:   a.GapAnalysis.Data(),
	}, nil
}

func (s *assessmentService) WriteReportPDF(ctx context.Context, orgID, id uint, w io.Writer) error {
	a, err := s.completedAssessment(ctx, orgID, id)
	if err != nil {
		return err
	}
	in, err := s.reportInput(ctx, a)
	if err != nil {
		return err
	}
	return report.PDF(in, w)
}

// RegenerateReport recomputes a completed assessment from its stored
// responses against the current questions.
func (s *assessmentService) RegenerateReport(ctx context.Context, id uint) (*model.Assessment, error) {
	a, err := s.assessmentRepo.GetAssessmentByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssessmentNotFound)
	}
	if !a.Completed() {
		return nil, ErrAssessmentNotCompleted
	}
	if err := s.evaluate(ctx, a); err != nil {
		return nil, err
	}
	if err := s.assessmentRepo.SaveAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("saving assessment: %w", err)
	}
	s.publish(utilities.EventAssessmentRegenerated, a)
	return a, nil
}

func (s *assessmentService) GetProgress(ctx context.Context, orgID uint, program string) (*ProgressData, error) {
	p, err := catalog.ParseProgram(program)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProgram, program)
	}
	return GenerateProgressData(ctx, s.assessmentRepo, orgID, string(p))
}
