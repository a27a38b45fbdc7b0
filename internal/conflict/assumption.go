package conflict

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/vordr/internal/note"
)

var (
	// Zero-delay timer: the synchronous-disguised-as-async anti-pattern.
	zeroDelayTimerRe = regexp.MustCompile(`setTimeout.*\(.*,\s*0\s*\)`)
	// Concurrency constructs that contradict a single-threaded assumption.
	concurrencyRe = regexp.MustCompile(`\basync\b|\bawait\b|threading|multiprocessing`)
	// Candidate library names in assumption text: capitalized tokens
	// and quoted substrings.
	capitalTokenRe = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9_]+\b`)
	quotedRe       = regexp.MustCompile(`["']([^"']+)["']`)
)

var dependencyKeywords = []string{"import", "dependency", "library", "package"}

// assumptionRule applies independent heuristics per assumption against the
// new content only. All assumptions are evaluated and all violations
// accumulated; nothing short-circuits.
type assumptionRule struct{}

func (assumptionRule) Name() string { return "assumptions" }

func (assumptionRule) Apply(n *note.Note, newContent, _ string, rep *Report) {
	for _, a := range n.Assumptions {
		text := strings.ToLower(a.Text)
		severity := a.Severity
		if severity == "" {
			severity = note.SeverityMedium
		}

		if strings.Contains(text, "async") && strings.Contains(text, "await") {
			if zeroDelayTimerRe.MatchString(newContent) {
				rep.Assumptions = append(rep.Assumptions, AssumptionViolation{
					AssumptionID:   a.ID,
					AssumptionText: a.Text,
					ViolationType:  ViolationSyncInsteadOfAsync,
					Severity:       severity,
					Details:        "Code uses a zero-delay setTimeout, a synchronous pattern, but the assumption states async operations are required.",
				})
			}
		}

		if containsAny(text, dependencyKeywords) {
			for _, lib := range candidateLibraries(a.Text) {
				if !importsLibrary(newContent, lib) {
					rep.Assumptions = append(rep.Assumptions, AssumptionViolation{
						AssumptionID:   a.ID,
						AssumptionText: a.Text,
						ViolationType:  ViolationMissingDependency,
						Severity:       severity,
						Details:        fmt.Sprintf("No import found for %s, but the assumption indicates it is required.", lib),
					})
				}
			}
		}

		if strings.Contains(text, "single-thread") || strings.Contains(text, "single thread") ||
			strings.Contains(text, "not thread-safe") {
			if concurrencyRe.MatchString(newContent) {
				rep.Assumptions = append(rep.Assumptions, AssumptionViolation{
					AssumptionID:   a.ID,
					AssumptionText: a.Text,
					ViolationType:  ViolationConcurrency,
					Severity:       severity,
					Details:        "Code introduces async or threading constructs, but the assumption states single-threaded operation.",
				})
			}
		}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// candidateLibraries extracts likely library names from assumption text.
func candidateLibraries(text string) []string {
	var out []string
	out = append(out, capitalTokenRe.FindAllString(text, -1)...)
	for _, m := range quotedRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// importsLibrary reports whether newContent has an import statement
// referencing the library name.
func importsLibrary(content, lib string) bool {
	re, err := regexp.Compile(`(?i)\bimport\b.*\b` + regexp.QuoteMeta(lib) + `\b`)
	if err != nil {
		return true // unmatched candidate, not a finding
	}
	return re.MatchString(content)
}
