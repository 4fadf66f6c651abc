package eligibility

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"schemeportal/internal/eligibility/models"
)

const (
	rupee            = "₹"
	eligibleSentence = "You meet all basic criteria."
)

// DefaultLocale groups income figures the Indian way (2,50,000).
var DefaultLocale = language.MustParse("en-IN")

// Formatter turns findings into citizen-facing reason strings. It runs at the
// HTTP boundary; the evaluator never formats.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter renders amounts with the grouping rules of tag.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Reasons renders a single result. Eligible results get exactly one
// affirmative sentence.
func (f *Formatter) Reasons(r models.Result) []string {
	if r.Status == models.StatusEligible {
		return []string{eligibleSentence}
	}
	reasons := make([]string, 0, len(r.Findings))
	for _, finding := range r.Findings {
		reasons = append(reasons, f.Reason(finding))
	}
	return reasons
}

// Render returns copies of results with Reasons filled in.
func (f *Formatter) Render(results []models.Result) []models.Result {
	out := make([]models.Result, len(results))
	for i, r := range results {
		r.Reasons = f.Reasons(r)
		out[i] = r
	}
	return out
}

// Reason renders one finding as the sentence shown to citizens.
func (f *Formatter) Reason(finding models.Finding) string {
	switch finding.Kind {
	case models.KindAgeMin:
		return fmt.Sprintf("Minimum age is %v (You are %v)", finding.Limit, finding.Actual)
	case models.KindAgeMax:
		return fmt.Sprintf("Maximum age is %v (You are %v)", finding.Limit, finding.Actual)
	case models.KindIncome:
		return "Income exceeds limit of " + rupee + f.amount(finding.Limit)
	case models.KindResidence:
		return fmt.Sprintf("Scheme is for %s residents only", strings.Join(joinable(finding.Limit), " or "))
	case models.KindOccupation:
		return "Restricted to: " + strings.Join(joinable(finding.Limit), ", ")
	case models.KindGender:
		return fmt.Sprintf("Only for %v applicants", finding.Limit)
	case models.KindDisability:
		return "Requires disability certificate"
	default:
		return string(finding.Kind)
	}
}

func (f *Formatter) amount(v any) string {
	switch n := v.(type) {
	case float64:
		return f.printer.Sprint(number.Decimal(n))
	case int:
		return f.printer.Sprint(number.Decimal(n))
	default:
		return fmt.Sprint(v)
	}
}

func joinable(v any) []string {
	switch set := v.(type) {
	case []models.Residence:
		out := make([]string, len(set))
		for i, r := range set {
			out[i] = string(r)
		}
		return out
	case []models.Occupation:
		out := make([]string, len(set))
		for i, o := range set {
			out[i] = string(o)
		}
		return out
	case []string:
		return set
	case []any:
		out := make([]string, len(set))
		for i, item := range set {
			out[i] = fmt.Sprint(item)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
