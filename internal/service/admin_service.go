package service

import (
	"context"
	"fmt"
	"time"

	"maturity-assessment-backend/internal/model"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/internal/scoring"
)

// AssessmentSummary is the per-assessment row of the admin organization list.
type AssessmentSummary struct {
	ID            uint       `json:"id"`
	Program       string     `json:"program"`
	Status        string     `json:"status"`
	MaturityLevel *float64   `json:"maturity_level"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// OrganizationSummary is one row of the admin organization list.
type OrganizationSummary struct {
	ID               uint                `json:"id"`
	Name             string              `json:"name"`
	Type             string              `json:"type"`
	Sector           string              `json:"sector"`
	Size             string              `json:"size"`
	Email            string              `json:"email"`
	AccessCode       string              `json:"access_code"`
	CreatedAt        time.Time           `json:"created_at"`
	AssessmentsCount int                 `json:"assessments_count"`
	Assessments      []AssessmentSummary `json:"assessments"`
}

// AdminStats are the dashboard counters.
type AdminStats struct {
	TotalOrganizations    int64   `json:"total_organizations"`
	TotalAssessments      int64   `json:"total_assessments"`
	CompletedAssessments  int64   `json:"completed_assessments"`
	InProgressAssessments int64   `json:"in_progress_assessments"`
	AverageMaturityLevel  float64 `json:"average_maturity_level"`
}

// DetailedResponse joins one stored answer with its question.
type DetailedResponse struct {
	QuestionID          uint     `json:"question_id"`
	Category            string   `json:"category"`
	Subcategory         string   `json:"subcategory"`
	QuestionText        string   `json:"question_text"`
	SelectedOptionIndex *int     `json:"selected_option_index"`
	SelectedOptionText  string   `json:"selected_option_text"`
	SelectedScore       *float64 `json:"selected_score"`
	Notes               *string  `json:"notes"`
	AllOptions          []string `json:"all_options"`
}

// OrganizationRef names the organization owning an assessment.
type OrganizationRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// AssessmentResponses is the admin view of every answer of an assessment.
type AssessmentResponses struct {
	AssessmentID   uint               `json:"assessment_id"`
	Program        string             `json:"program"`
	Organization   OrganizationRef    `json:"organization"`
	Status         string             `json:"status"`
	MaturityLevel  *float64           `json:"maturity_level"`
	CompletedAt    *time.Time         `json:"completed_at"`
	TotalQuestions int                `json:"total_questions"`
	Responses      []DetailedResponse `json:"responses"`
}

// AssessmentDetail is a full assessment with its organization.
type AssessmentDetail struct {
	*model.Assessment
	Organization OrganizationRef `json:"organization"`
}

type AdminService interface {
	ListOrganizations(ctx context.Context) ([]OrganizationSummary, error)
	Stats(ctx context.Context) (*AdminStats, error)
	AssessmentDetail(ctx context.Context, id uint) (*AssessmentDetail, error)
	DetailedResponses(ctx context.Context, id uint) (*AssessmentResponses, error)
	DeleteAssessment(ctx context.Context, id uint) error
	DeleteOrganization(ctx context.Context, id uint) error
}

type adminService struct {
	orgRepo        repository.OrganizationRepository
	assessmentRepo repository.AssessmentRepository
	questions      QuestionService
}

func NewAdminService(
	orgRepo repository.OrganizationRepository,
	assessmentRepo repository.AssessmentRepository,
	questions QuestionService,
) AdminService {
	return &adminService{orgRepo: orgRepo, assessmentRepo: assessmentRepo, questions: questions}
}

func (s *adminService) ListOrganizations(ctx context.Context) ([]OrganizationSummary, error) {
	orgs, err := s.orgRepo.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	out := make([]OrganizationSummary, 0, len(orgs))
	for _, o := range orgs {
		summary := OrganizationSummary{
			ID:               o.ID,
			Name:             o.Name,
			Type:             o.Type,
			Sector:           o.Sector,
			Size:             o.Size,
			Email:            o.Email,
			AccessCode:       o.AccessCode,
			CreatedAt:        o.CreatedAt,
			AssessmentsCount: len(o.Assessments),
			Assessments:      make([]AssessmentSummary, 0, len(o.Assessments)),
		}
		for _, a := range o.Assessments {
			summary.Assessments = append(summary.Assessments, AssessmentSummary{
				ID:            a.ID,
				Program:       a.Program,
				Status:        a.Status,
				MaturityLevel: a.MaturityLevel,
				CreatedAt:     a.CreatedAt,
				CompletedAt:   a.CompletedAt,
			})
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	st, err := s.assessmentRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	out := &AdminStats{
		TotalOrganizations:    st.TotalOrganizations,
		TotalAssessments:      st.TotalAssessments,
		CompletedAssessments:  st.CompletedAssessments,
		InProgressAssessments: st.InProgressAssessments,
	}
	if st.AverageMaturity != nil {
		out.AverageMaturityLevel = scoring.Round2(*st.AverageMaturity)
	}
	return out, nil
}

func (s *adminService) assessmentWithOrg(ctx context.Context, id uint) (*model.Assessment, OrganizationRef, error) {
	a, err := s.assessmentRepo.GetAssessmentByID(ctx, id)
	if err != nil {
		return nil, OrganizationRef{}, notFound(err, ErrAssessmentNotFound)
	}
	org, err := s.orgRepo.GetOrganizationByID(ctx, a.OrganizationID)
	if err != nil {
		return nil, OrganizationRef{}, notFound(err, ErrOrganizationNotFound)
	}
	return a, OrganizationRef{ID: org.ID, Name: org.Name, Type: org.Type}, nil
}

func (s *adminService) AssessmentDetail(ctx context.Context, id uint) (*AssessmentDetail, error) {
	a, org, err := s.assessmentWithOrg(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AssessmentDetail{Assessment: a, Organization: org}, nil
}

// DetailedResponses resolves every stored answer against the current
// questions. Answers to questions that no longer exist are skipped.
func (s *adminService) DetailedResponses(ctx context.Context, id uint) (*AssessmentResponses, error) {
	a, org, err := s.assessmentWithOrg(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListQuestions(ctx, a.Program, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	out := &AssessmentResponses{
		AssessmentID:  a.ID,
		Program:       a.Program,
		Organization:  org,
		Status:        a.Status,
		MaturityLevel: a.MaturityLevel,
		CompletedAt:   a.CompletedAt,
		Responses:     []DetailedResponse{},
	}
	for _, ans := range a.Responses.Data().Answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		r := DetailedResponse{
			QuestionID:          q.ID,
			Category:            q.Category,
			Subcategory:         q.Subcategory,
			QuestionText:        q.Text,
			SelectedOptionIndex: ans.SelectedOption,
			Notes:               ans.Notes,
			AllOptions:          make([]string, len(q.Options)),
		}
		for i, o := range q.Options {
			r.AllOptions[i] = o.Text
		}
		if i := ans.SelectedOption; i != nil && *i >= 0 && *i < len(q.Options) {
			score := q.Options[*i].Score
			r.SelectedOptionText = q.Options[*i].Text
			r.SelectedScore = &score
		}
		out.Responses = append(out.Responses, r)
	}
	out.TotalQuestions = len(out.Responses)
	return out, nil
}

func (s *adminService) DeleteAssessment(ctx context.Context, id uint) error {
	return notFound(s.assessmentRepo.DeleteAssessment(ctx, id), ErrAssessmentNotFound)
}

func (s *adminService) DeleteOrganization(ctx context.Context, id uint) error {
	return notFound(s.orgRepo.DeleteOrganization(ctx, id), ErrOrganizationNotFound)
}
