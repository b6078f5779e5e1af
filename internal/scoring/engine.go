// Package scoring turns weighted categorical answers into per-category
// maturity scores, an overall maturity figure, a maturity label and a
// prioritized gap analysis.
//
// Analyze is a pure function: it never mutates its inputs, never fails and
// always returns a well-formed Result, so it is safe to call concurrently.
package scoring

import (
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// TargetScore is the highest attainable score and the gap analysis target.
	TargetScore = 5

	// FallbackScore is used when an answer has no valid option selected.
	FallbackScore = 1.0

	// DefaultWeight applies to questions decoded without a weight key.
	DefaultWeight = 1.0

	// DefaultMaturity is the overall maturity when no answer contributed.
	DefaultMaturity = 1.0
)

// Maturity labels, indexed by the rounded overall maturity.
const (
	LabelInitial               = "Initial"
	LabelManaged               = "Managed"
	LabelDefined               = "Defined"
	LabelQuantitativelyManaged = "Quantitatively Managed"
	LabelOptimized             = "Optimized"
)

// Gap priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

var maturityLabels = map[int]string{
	1: LabelInitial,
	2: LabelManaged,
	3: LabelDefined,
	4: LabelQuantitativelyManaged,
	5: LabelOptimized,
}

// Option is one selectable answer of a question.
type Option struct {
	Text  string  `json:"text" yaml:"text"`
	Score float64 `json:"score" yaml:"score"`
}

// Question is the part of a catalog question the engine needs.
type Question struct {
	ID          uint     `json:"id" yaml:"id"`
	Category    string   `json:"category" yaml:"category"`
	Subcategory string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Weight      float64  `json:"weight" yaml:"weight"`
	Options     []Option `json:"options" yaml:"options"`
}

// UnmarshalJSON applies FallbackScore to options without a score key.
func (o *Option) UnmarshalJSON(b []byte) error {
	type plain Option
	p := plain{Score: FallbackScore}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Option(p)
	return nil
}

// UnmarshalYAML applies FallbackScore to options without a score key.
func (o *Option) UnmarshalYAML(value *yaml.Node) error {
	type plain Option
	p := plain{Score: FallbackScore}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*o = Option(p)
	return nil
}

// UnmarshalJSON applies DefaultWeight when the weight key is absent. An
// explicit zero is kept.
func (q *Question) UnmarshalJSON(b []byte) error {
	type plain Question
	p := plain{Weight: DefaultWeight}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// UnmarshalYAML applies DefaultWeight when the weight key is absent.
func (q *Question) UnmarshalYAML(value *yaml.Node) error {
	type plain Question
	p := plain{Weight: DefaultWeight}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*q = Question(p)
	return nil
}

// Answer references a question and the zero-based index of the chosen option.
// A nil SelectedOption means no option was chosen.
type Answer struct {
	QuestionID     uint    `json:"question_id" yaml:"question_id"`
	SelectedOption *int    `json:"selected_option" yaml:"selected_option"`
	Notes          *string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// AnswerSet is the submission payload shape.
type AnswerSet struct {
	Answers []Answer `json:"answers" yaml:"answers"`
}

// Gap describes the distance of one category from the target score.
type Gap struct {
	CurrentScore float64 `json:"current_score" yaml:"current_score"`
	TargetScore  int     `json:"target_score" yaml:"target_score"`
	Gap          float64 `json:"gap" yaml:"gap"`
	Priority     string  `json:"priority" yaml:"priority"`
}

// Result is the complete output consumed by report rendering.
type Result struct {
	Scores          map[string]float64 `json:"scores" yaml:"scores"`
	OverallMaturity float64            `json:"overall_maturity" yaml:"overall_maturity"`
	MaturityLabel   string             `json:"maturity_label" yaml:"maturity_label"`
	GapAnalysis     map[string]Gap     `json:"gap_analysis" yaml:"gap_analysis"`
}

// Selected returns a pointer to i, for building answers.
func Selected(i int) *int {
	return &i
}

// Analyze scores answers against the question catalog.
//
// Answers referencing unknown questions are skipped. An absent or out of
// range option index scores FallbackScore. Weights are used as given, so a
// zero-weight question contributes nothing. Categories that received no
// weight are left out of both Scores and GapAnalysis, and the overall
// maturity falls back to DefaultMaturity when no weight was accumulated.
func Analyze(answers []Answer, questions []Question) Result {
	byID := make(map[uint]*Question, len(questions))
	for i := range questions {
		if _, ok := byID[questions[i].ID]; !ok {
			byID[questions[i].ID] = &questions[i]
		}
	}

	categorySum := make(map[string]float64)
	categoryWeight := make(map[string]float64)
	var totalSum, totalWeight float64

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}

		w := q.Weight
		s := OptionScore(*q, a.SelectedOption)

		categorySum[q.Category] += s * w
		categoryWeight[q.Category] += w
		totalSum += s * w
		totalWeight += w
	}

	scores := make(map[string]float64, len(categorySum))
	for category, sum := range categorySum {
		if categoryWeight[category] > 0 {
			scores[category] = Round2(sum / categoryWeight[category])
		}
	}

	overall := DefaultMaturity
	if totalWeight > 0 {
		overall = Round2(totalSum / totalWeight)
	}

	return Result{
		Scores:          scores,
		OverallMaturity: overall,
		MaturityLabel:   Label(overall),
		GapAnalysis:     GapAnalysis(scores),
	}
}

// OptionScore returns the declared score of the selected option, or
// FallbackScore when the selection is absent or out of range.
func OptionScore(q Question, selected *int) float64 {
	if selected == nil {
		return FallbackScore
	}
	i := *selected
	if i < 0 || i >= len(q.Options) {
		return FallbackScore
	}
	return q.Options[i].Score
}

// Label maps an overall maturity to its label. The value is rounded half to
// even before lookup.
func Label(maturity float64) string {
	level := math.RoundToEven(maturity)
	if level < 1 || level > TargetScore {
		return LabelInitial
	}
	return maturityLabels[int(level)]
}

// GapAnalysis builds one gap entry per scored category.
func GapAnalysis(scores map[string]float64) map[string]Gap {
	gaps := make(map[string]Gap, len(scores))
	for category, score := range scores {
		gap := Round2(TargetScore - score)
		gaps[category] = Gap{
			CurrentScore: score,
			TargetScore:  TargetScore,
			Gap:          gap,
			Priority:     Priority(gap),
		}
	}
	return gaps
}

// Priority classifies a gap: above 2 is High, above 1 is Medium, else Low.
func Priority(gap float64) string {
	switch {
	case gap > 2:
		return PriorityHigh
	case gap > 1:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Round2 rounds to two decimals using the shortest correctly rounded
// decimal representation, so 2.675 stays 2.67 as its binary value dictates.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return math.Round(v*100) / 100
	}
	return r
}
