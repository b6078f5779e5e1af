package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"maturity-assessment-backend/internal/report"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/utilities"
)

// ReportFileService archives PDF reports of completed assessments.
type ReportFileService interface {
	GenerateReportFile(ctx context.Context, assessmentID uint) (string, error)
	ReportFilePath(assessmentID uint) string
}

type reportFileService struct {
	assessmentRepo repository.AssessmentRepository
	orgRepo        repository.OrganizationRepository
	questions      QuestionService
	dir            string
}

func NewReportFileService(
	assessmentRepo repository.AssessmentRepository,
	orgRepo repository.OrganizationRepository,
	questions QuestionService,
	dir string,
) ReportFileService {
	return &reportFileService{
		assessmentRepo: assessmentRepo,
		orgRepo:        orgRepo,
		questions:      questions,
		dir:            dir,
	}
}

// InitReportEventListeners writes the PDF whenever an assessment is
// completed or regenerated.
func InitReportEventListeners(bus *utilities.EventBus, files ReportFileService) {
	handler := func(data any) {
		event, ok := data.(utilities.AssessmentEvent)
		if !ok {
			slog.Warn("invalid assessment event payload", "type", fmt.Sprintf("%T", data))
			return
		}
		path, err := files.GenerateReportFile(context.Background(), event.AssessmentID)
		if err != nil {
			slog.Error("generating report file", "assessment_id", event.AssessmentID, "error", err)
			return
		}
		slog.Info("report file written", "assessment_id", event.AssessmentID, "path", path)
	}
	bus.Subscribe(utilities.EventAssessmentCompleted, handler)
	bus.Subscribe(utilities.EventAssessmentRegenerated, handler)
}

func (s *reportFileService) ReportFilePath(assessmentID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("assessment_%d.pdf", assessmentID))
}

// GenerateReportFile renders the PDF into a temporary file and renames it
// into place, so readers never see a partial report.
func (s *reportFileService) GenerateReportFile(ctx context.Context, assessmentID uint) (string, error) {
	a, err := s.assessmentRepo.GetAssessmentByID(ctx, assessmentID)
	if err != nil {
		return "", notFound(err, ErrAssessmentNotFound)
	}
	if !a.Completed() {
		return "", ErrAssessmentNotCompleted
	}
	in, err := buildReportInput(ctx, s.orgRepo, s.questions, a)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "report-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := report.PDF(in, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}

	path := s.ReportFilePath(assessmentID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("saving report file: %w", err)
	}
	return path, nil
}
