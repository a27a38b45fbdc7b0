// Package conflict classifies proposed file changes against a design intent
// note. The checks are deliberately heuristic (regex and substring matching,
// not parsing): a frozen-section check that can block, an assumption check
// that only warns, and a breaking-interface check.
package conflict

import (
	"github.com/starford/vordr/internal/note"
)

// Assumption violation types.
const (
	ViolationSyncInsteadOfAsync = "sync-instead-of-async"
	ViolationMissingDependency  = "missing-required-dependency"
	ViolationConcurrency        = "concurrency-in-single-threaded"
)

// Breaking change types.
const (
	BreakingRemovedInterface  = "removed_interface"
	BreakingRemovedProperties = "removed_properties"
)

// FrozenViolation reports a change to a frozen section. At most one is
// reported per evaluation; the first offending section wins.
type FrozenViolation struct {
	FrozenID string `json:"frozenId"`
	Reason   string `json:"reason"`
	Details  string `json:"details"`
}

// AssumptionViolation reports a heuristic match against a documented
// assumption. Never blocking.
type AssumptionViolation struct {
	AssumptionID   string `json:"assumptionId"`
	AssumptionText string `json:"assumptionText"`
	ViolationType  string `json:"violationType"`
	Severity       string `json:"severity"`
	Details        string `json:"details"`
}

// BreakingChange reports a removed public interface or removed members.
type BreakingChange struct {
	Type       string   `json:"type"`
	Interface  string   `json:"interface"`
	Properties []string `json:"properties,omitempty"`
	Details    string   `json:"details"`
}

// Report is the combined result of one evaluation.
type Report struct {
	Frozen      *FrozenViolation      `json:"frozenViolation,omitempty"`
	Assumptions []AssumptionViolation `json:"assumptionViolations,omitempty"`
	Breaking    []BreakingChange      `json:"breakingChanges,omitempty"`
}

// Rule is one independent conflict check. Rules accumulate findings into the
// shared report; a panicking rule is contained by the detector so the other
// rules still produce results. Implementations must be pure.
type Rule interface {
	Name() string
	Apply(n *note.Note, newContent, oldContent string, rep *Report)
}

// Detector orchestrates a fixed rule set over a note and a proposed change.
type Detector struct {
	rules []Rule
}

// NewDetector returns a detector with the default rules. Passing rules
// overrides the default set (used to swap a heuristic for a stronger
// analyzer without touching the orchestration).
func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = []Rule{frozenRule{}, assumptionRule{}, breakingRule{}}
	}
	return &Detector{rules: rules}
}

// Detect evaluates the note against a proposed change. oldContent may be
// empty when no prior version is available (fresh writes); the frozen and
// breaking checks then stay silent to avoid false positives. Pure, no side
// effects, never panics.
func (d *Detector) Detect(n *note.Note, newContent, oldContent string) Report {
	var rep Report
	for _, r := range d.rules {
		applyRule(r, n, newContent, oldContent, &rep)
	}
	return rep
}

// Detect runs the default rule set; the common entry point.
func Detect(n *note.Note, newContent, oldContent string) Report {
	return NewDetector().Detect(n, newContent, oldContent)
}

// applyRule contains a single rule's failure so one check cannot abort the
// whole evaluation.
func applyRule(r Rule, n *note.Note, newContent, oldContent string, rep *Report) {
	defer func() { _ = recover() }()
	r.Apply(n, newContent, oldContent, rep)
}
