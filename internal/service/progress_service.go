package service

import (
	"context"
	"fmt"

	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/internal/scoring"
)

// CategoryProgress compares one category between the first and the latest
// completed assessment. A nil score means the category was not scored.
type CategoryProgress struct {
	Initial *float64 `json:"initial"`
	Current *float64 `json:"current"`
	Delta   *float64 `json:"delta"`
}

// ProgressData holds the metrics for the progress report.
type ProgressData struct {
	Program             string                      `json:"program"`
	CompletedCount      int                         `json:"completed_count"`
	InitialAssessmentID uint                        `json:"initial_assessment_id"`
	LatestAssessmentID  uint                        `json:"latest_assessment_id"`
	InitialMaturity     float64                     `json:"initial_maturity"`
	CurrentMaturity     float64                     `json:"current_maturity"`
	InitialLabel        string                      `json:"initial_label"`
	CurrentLabel        string                      `json:"current_label"`
	Improvement         float64                     `json:"improvement"`
	Categories          map[string]CategoryProgress `json:"categories"`
}

// GenerateProgressData compares the oldest and the most recent completed
// assessments of a program.
func GenerateProgressData(ctx context.Context, repo repository.AssessmentRepository, orgID uint, program string) (*ProgressData, error) {
	completed, err := repo.ListCompleted(ctx, orgID, program)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed assessments: %w", err)
	}
	if len(completed) == 0 {
		return nil, ErrNoCompletedAssessments
	}

	initial := completed[0]
	latest := completed[len(completed)-1]
	initialResult := initial.Result()
	latestResult := latest.Result()

	categories := make(map[string]CategoryProgress)
	for c, v := range initialResult.Scores {
		score := v
		categories[c] = CategoryProgress{Initial: &score}
	}
	for c, v := range latestResult.Scores {
		score := v
		p := categories[c]
		p.Current = &score
		if p.Initial != nil {
			delta := scoring.Round2(score - *p.Initial)
			p.Delta = &delta
		}
		categories[c] = p
	}

	return &ProgressData{
		Program:             program,
		CompletedCount:      len(completed),
		InitialAssessmentID: initial.ID,
		LatestAssessmentID:  latest.ID,
		InitialMaturity:     maturity(initial),
		CurrentMaturity:     maturity(latest),
		InitialLabel:        initial.MaturityLabel,
		CurrentLabel:        latest.MaturityLabel,
		Improvement:         scoring.Round2(maturity(latest) - maturity(initial)),
		Categories:          categories,
	}, nil
}

func maturity(a model.Assessment) float64 {
	if a.MaturityLevel == nil {
		return scoring.DefaultMaturity
	}
	return *a.MaturityLevel
}
