package report

import (
	"strings"
	"text/template"

	"maturity-assessment-backend/internal/scoring"
)

const markdownTemplate = `# {{.Variant.Title}}

## Organization: {{.Org.Name}}
### Type: {{.OrgType}}
{{- with .Org.Sector}}
### Sector: {{.}}
{{- end}}
{{- with .Org.Size}}
### Size: {{.}}
{{- end}}

---

## EXECUTIVE SUMMARY

The assessment shows an overall maturity level of **{{.Result.MaturityLabel}}** with an average score of **{{num .Result.OverallMaturity}}/5**.

---

## ANALYSIS BY AREA
{{range .Areas}}
### {{.Category}}
- **Current score:** {{num .Gap.CurrentScore}}/5 {{.Stars}}
- **Gap to target:** {{num .Gap.Gap}}
- **Intervention priority:** {{.Gap.Priority}}
{{else}}
No area received a scored answer.
{{end}}
---

## PRIORITY RECOMMENDATIONS
{{if .High}}
### Urgent Actions (High Priority)

{{range .High}}1. **{{.Category}}**: an immediate action plan is needed to close a gap of {{num .Gap.Gap}} points.
{{end}}{{end}}{{if .Medium}}
### Medium-Term Actions (Medium Priority)

{{range .Medium}}1. **{{.Category}}**: plan improvement actions over the next year.
{{end}}{{end}}{{if not (or .High .Medium)}}
No area requires priority intervention.
{{end}}
---

## SUGGESTED ROADMAP

### Phase 1 - Quick Wins (0-3 months)
- Identify and implement quick improvements in the critical areas
- Start basic training programs
- Define monitoring KPIs

### Phase 2 - Consolidation (3-12 months)
- Implement solutions for the priority areas
- Develop advanced skills
- Optimize key processes

### Phase 3 - Transformation (12-24 months)
{{range .Variant.Transform}}- {{.}}
{{end}}
---

## CONCLUSIONS

{{.Org.Name}} is at the **{{.Result.MaturityLabel}}** stage of its {{.Variant.Subject}}.
{{.Variant.Closing}}

---

*{{.Variant.Footer}}*
`

var markdownTmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"num": formatNumber}).
	Parse(markdownTemplate))

type markdownView struct {
	Variant variant
	Org     Organization
	OrgType string
	Result  scoring.Result
	Areas   []Area
	High    []Area
	Medium  []Area
}

// Markdown renders the narrative report.
func Markdown(in Input) (string, error) {
	areas := in.areas()
	view := markdownView{
		Variant: variantFor(in.Program),
		Org:     in.Organization,
		OrgType: OrgTypeLabel(in.Organization.Type),
		Result:  in.Result,
		Areas:   areas,
		High:    byPriority(areas, scoring.PriorityHigh),
		Medium:  byPriority(areas, scoring.PriorityMedium),
	}
	if view.Org.Name == "" {
		view.Org.Name = "The organization"
	}

	var b strings.Builder
	if err := markdownTmpl.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}
