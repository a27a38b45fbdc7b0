// Package note defines the design intent note record and its schema
// validation rules.
package note

import "time"

// SchemaVersion is the single supported note schema version.
const SchemaVersion = "1.0"

// Assumption severities.
const (
	SeverityCritical = "critical"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Constraint types.
const (
	ConstraintFunctional  = "functional"
	ConstraintAPI         = "api"
	ConstraintPerformance = "performance"
)

// Tradeoff debt levels.
const (
	DebtHigh   = "high"
	DebtMedium = "medium"
	DebtLow    = "low"
)

// Note is the design intent record attached to one source file. There is at
// most one note per normalized path.
type Note struct {
	Version                 string           `json:"version"`
	FilePath                string           `json:"filePath"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
	DesignIntent            DesignIntent     `json:"designIntent"`
	Assumptions             []Assumption     `json:"assumptions"`
	Constraints             []Constraint     `json:"constraints"`
	Tradeoffs               []Tradeoff       `json:"tradeoffs"`
	FrozenSections          []FrozenSection  `json:"frozenSections"`
	RequiresAcknowledgment  bool             `json:"requiresAcknowledgment"`
	Tags                    []string         `json:"tags"`
	MigrationHistory        []MigrationEntry `json:"migrationHistory,omitempty"`
}

// DesignIntent captures the purpose and reasoning behind a file.
type DesignIntent struct {
	Purpose      string   `json:"purpose"`
	KeyDecisions []string `json:"keyDecisions"`
	Rationale    string   `json:"rationale"`
}

// Assumption is a documented precondition about the file's behavior or
// environment. Assumptions are heuristically checked, never blocking.
type Assumption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Severity string `json:"severity,omitempty"`
}

// Constraint is an active requirement on the file.
type Constraint struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Tradeoff records an intentional shortcut and its repayment plan.
type Tradeoff struct {
	ID            string `json:"id"`
	Shortcut      string `json:"shortcut"`
	Reason        string `json:"reason"`
	DebtLevel     string `json:"debtLevel,omitempty"`
	RepaymentPlan string `json:"repaymentPlan,omitempty"`
}

// FrozenSection declares an immutable region, identified either by a regular
// expression or by a line range. Pattern takes precedence when both are set.
type FrozenSection struct {
	ID         string `json:"id"`
	Reason     string `json:"reason"`
	Pattern    string `json:"pattern,omitempty"`
	LineRange  []int  `json:"lineRange,omitempty"`
	Exceptions string `json:"exceptions,omitempty"`
}

// MigrationEntry records one path migration. The history is append-only.
type MigrationEntry struct {
	Timestamp time.Time `json:"timestamp"`
	OldPath   string    `json:"oldPath"`
	NewPath   string    `json:"newPath"`
}

// New returns the default note skeleton for a file path with both timestamps
// set to now.
func New(filePath string) *Note {
	now := time.Now().UTC()
	return &Note{
		Version:   SchemaVersion,
		FilePath:  filePath,
		CreatedAt: now,
		UpdatedAt: now,
		DesignIntent: DesignIntent{
			KeyDecisions: []string{},
		},
		Assumptions:            []Assumption{},
		Constraints:            []Constraint{},
		Tradeoffs:              []Tradeoff{},
		FrozenSections:         []FrozenSection{},
		RequiresAcknowledgment: true,
		Tags:                   []string{},
	}
}

// HasCriticalAssumption reports whether any assumption is critical severity.
func (n *Note) HasCriticalAssumption() bool {
	for _, a := range n.Assumptions {
		if a.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
