package model

import (
	"time"

	"gorm.io/datatypes"

	"maturity-assessment-backend/internal/scoring"
)

// Organization types.
const (
	OrgTypeCompany     = "company"
	OrgTypePublicAdmin = "public_admin"
)

// Assessment statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type Organization struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	Type           string    `json:"type" gorm:"not null"` // company, public_admin
	Sector         string    `json:"sector"`
	Size           string    `json:"size"`
	Email          string    `json:"email"`
	FiscalCode     string    `json:"fiscal_code"`
	Phone          string    `json:"phone"`
	AdminName      string    `json:"admin_name"`
	AccessCode     string    `json:"access_code" gorm:"size:8;not null;uniqueIndex"`
	HashedPassword string    `json:"-" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Assessments []Assessment `json:"assessments,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}

type Assessment struct {
	ID             uint                                       `json:"id" gorm:"primaryKey"`
	OrganizationID uint                                       `json:"organization_id" gorm:"not null;index"`
	Program        string                                     `json:"program" gorm:"not null;index"`
	Status         string                                     `json:"status" gorm:"not null;default:'in_progress'"` // in_progress, completed
	Responses      datatypes.JSONType[scoring.AnswerSet]      `json:"responses" gorm:"type:jsonb"`
	Scores         datatypes.JSONType[map[string]float64]     `json:"scores" gorm:"type:jsonb"`
	GapAnalysis    datatypes.JSONType[map[string]scoring.Gap] `json:"gap_analysis" gorm:"type:jsonb"`
	MaturityLevel  *float64                                   `json:"maturity_level"`
	MaturityLabel  string                                     `json:"maturity_label"`
	Report         string                                     `json:"report,omitempty" gorm:"type:text"`
	CreatedAt      time.Time                                  `json:"created_at"`
	CompletedAt    *time.Time                                 `json:"completed_at"`
}

// Completed reports whether the assessment has been submitted.
func (a *Assessment) Completed() bool {
	return a.Status == StatusCompleted
}

// Result rebuilds the engine output stored on a completed assessment.
func (a *Assessment) Result() scoring.Result {
	r := scoring.Result{
		Scores:        a.Scores.Data(),
		MaturityLabel: a.MaturityLabel,
		GapAnalysis:   a.GapAnalysis.Data(),
	}
	if a.MaturityLevel != nil {
		r.OverallMaturity = *a.MaturityLevel
	}
	return r
}

// ApplyResult stores r on the assessment, replacing any previous result.
func (a *Assessment) ApplyResult(r scoring.Result) {
	level := r.OverallMaturity
	a.Scores = datatypes.NewJSONType(r.Scores)
	a.GapAnalysis = datatypes.NewJSONType(r.GapAnalysis)
	a.MaturityLevel = &level
	a.MaturityLabel = r.MaturityLabel
}

type Question struct {
	ID          uint                                `json:"id" gorm:"primaryKey"`
	Program     string                              `json:"program" gorm:"not null;index"`
	Category    string                              `json:"category" gorm:"not null"`
	Subcategory string                              `json:"subcategory"`
	Text        string                              `json:"text" gorm:"not null"`
	Hint        string                              `json:"hint"`
	Options     datatypes.JSONSlice[scoring.Option] `json:"options" gorm:"type:jsonb"`
	Weight      float64                             `json:"weight" gorm:"not null"`
	SortOrder   int                                 `json:"order"`
	TargetType  string                              `json:"target_type" gorm:"default:'both'"` // both, company, public_admin
}

// Engine converts q to the scoring engine's question type.
func (q Question) Engine() scoring.Question {
	return scoring.Question{
		ID:          q.ID,
		Category:    q.Category,
		Subcategory: q.Subcategory,
		Weight:      q.Weight,
		Options:     []scoring.Option(q.Options),
	}
}

// EngineQuestions converts a question list for scoring.Analyze.
func EngineQuestions(questions []Question) []scoring.Question {
	out := make([]scoring.Question, len(questions))
	for i, q := range questions {
		out[i] = q.Engine()
	}
	return out
}
