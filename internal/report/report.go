// Package report renders assessment results as a Markdown narrative and as
// a PDF summary.
package report

import (
	"sort"
	"strconv"
	"strings"

	"maturity-assessment-backend/internal/catalog"
	"maturity-assessment-backend/internal/scoring"
)

// Organization is the part of the assessed organization shown in reports.
type Organization struct {
	Name   string
	Type   string
	Sector string
	Size   string
}

// Input is everything a report is rendered from.
type Input struct {
	Program      catalog.Program
	Organization Organization
	Result       scoring.Result
	// Categories fixes the order of the per-area sections. See OrderCategories.
	Categories []string
}

// Area is one scored category.
type Area struct {
	Category string
	Gap      scoring.Gap
	Stars    string
}

type variant struct {
	Title     string
	Subject   string
	Closing   string
	Footer    string
	Transform []string
}

var variants = map[catalog.Program]variant{
	catalog.DigitalMaturity: {
		Title:   "DIGITAL MATURITY REPORT",
		Subject: "digital transformation journey",
		Closing: "With a structured approach and targeted investment it can reach higher maturity levels and gain significant benefits in efficiency, service quality and competitiveness.",
		Footer:  "Report generated automatically by the Digital Maturity Assessment system",
		Transform: []string{
			"Complete the digital transformation of core areas",
			"Adopt emerging technologies",
			"Reach operational excellence",
		},
	},
	catalog.InnovationConformity: {
		Title:   "INNOVATION MANAGEMENT CONFORMITY REPORT",
		Subject: "path towards a structured innovation management system",
		Closing: "Closing the gaps identified here prepares the organization for a conformity review of its innovation management system.",
		Footer:  "Report generated automatically by the Innovation Management Assessment system",
		Transform: []string{
			"Embed innovation processes in every business unit",
			"Run periodic management reviews of the innovation system",
			"Prepare for an external conformity review",
		},
	},
	catalog.Governance: {
		Title:   "TRANSPARENT GOVERNANCE REPORT",
		Subject: "transparent governance journey",
		Closing: "Consistent work on transparency, traceability and participation strengthens trust and the quality of public decisions.",
		Footer:  "Report generated automatically by the Transparent Governance Assessment system",
		Transform: []string{
			"Publish decisions and their outcomes as open data",
			"Make citizen participation a standard step of decision making",
			"Adopt a recognized improvement model",
		},
	},
	catalog.SocialPact: {
		Title:   "SOCIAL IMPACT PACT REPORT",
		Subject: "social impact journey",
		Closing: "Measuring and sharing its impact lets the organization turn its values into lasting results for people and the territory.",
		Footer:  "Report generated automatically by the Social Impact Pact Assessment system",
		Transform: []string{
			"Publish a periodic social impact report",
			"Extend ethical commitments to the supply chain",
			"Co-design initiatives with the local community",
		},
	},
}

func variantFor(p catalog.Program) variant {
	if v, ok := variants[p]; ok {
		return v
	}
	return variants[catalog.DigitalMaturity]
}

// OrderCategories returns the scored categories in catalog order. Scored
// categories missing from catalogOrder follow, sorted by name.
func OrderCategories(r scoring.Result, catalogOrder []string) []string {
	seen := make(map[string]bool, len(r.GapAnalysis))
	ordered := make([]string, 0, len(r.GapAnalysis))
	for _, c := range catalogOrder {
		if _, ok := r.GapAnalysis[c]; ok && !seen[c] {
			seen[c] = true
			ordered = append(ordered, c)
		}
	}

	var rest []string
	for c := range r.GapAnalysis {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func (in Input) areas() []Area {
	order := OrderCategories(in.Result, in.Categories)
	out := make([]Area, 0, len(order))
	for _, c := range order {
		g := in.Result.GapAnalysis[c]
		out = append(out, Area{Category: c, Gap: g, Stars: Stars(g.CurrentScore)})
	}
	return out
}

// Stars renders a score as five filled or empty stars, truncating the score.
func Stars(score float64) string {
	n := int(score)
	if n < 0 {
		n = 0
	}
	if n > scoring.TargetScore {
		n = scoring.TargetScore
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", scoring.TargetScore-n)
}

// OrgTypeLabel is the display name of an organization type.
func OrgTypeLabel(t string) string {
	if t == "public_admin" {
		return "Public Administration"
	}
	return "Company"
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func byPriority(areas []Area, priority string) []Area {
	var out []Area
	for _, a := range areas {
		if a.Gap.Priority == priority {
			out = append(out, a)
		}
	}
	return out
}
