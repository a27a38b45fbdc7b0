package note

import (
	"errors"
	"testing"

	"github.com/starford/vordr/internal/apperr"
)

func valid() *Note {
	n := New("/project/src/handler.ts")
	n.DesignIntent.Purpose = "Request handler"
	return n
}

func TestValidateDefaultSkeleton(t *testing.T) {
	if err := valid().Validate(); err != nil {
		t.Fatalf("default skeleton should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Note)
	}{
		{"missing version", func(n *Note) { n.Version = "" }},
		{"missing file path", func(n *Note) { n.FilePath = "" }},
		{"unknown version", func(n *Note) { n.Version = "2.0" }},
		{"assumption without id", func(n *Note) {
			n.Assumptions = append(n.Assumptions, Assumption{Text: "x"})
		}},
		{"assumption bad severity", func(n *Note) {
			n.Assumptions = append(n.Assumptions, Assumption{ID: "a1", Text: "x", Severity: "urgent"})
		}},
		{"constraint without text", func(n *Note) {
			n.Constraints = append(n.Constraints, Constraint{ID: "c1"})
		}},
		{"constraint bad type", func(n *Note) {
			n.Constraints = append(n.Constraints, Constraint{ID: "c1", Text: "x", Type: "style"})
		}},
		{"tradeoff without reason", func(n *Note) {
			n.Tradeoffs = append(n.Tradeoffs, Tradeoff{ID: "t1", Shortcut: "x"})
		}},
		{"frozen section without pattern or range", func(n *Note) {
			n.FrozenSections = append(n.FrozenSections, FrozenSection{ID: "f1", Reason: "x"})
		}},
		{"frozen section short range", func(n *Note) {
			n.FrozenSections = append(n.FrozenSections, FrozenSection{ID: "f1", Reason: "x", LineRange: []int{10}})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := valid()
			tc.mutate(n)
			err := n.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !errors.Is(err, apperr.ErrSchemaInvalid) {
				t.Fatalf("error does not wrap ErrSchemaInvalid: %v", err)
			}
		})
	}
}

func TestValidateAcceptsLineRangeSection(t *testing.T) {
	n := valid()
	n.FrozenSections = append(n.FrozenSections, FrozenSection{
		ID:        "f1",
		Reason:    "wire format",
		LineRange: []int{10, 42},
	})
	if err := n.Validate(); err != nil {
		t.Fatalf("line-range section should validate: %v", err)
	}
}

func TestHasCriticalAssumption(t *testing.T) {
	n := valid()
	if n.HasCriticalAssumption() {
		t.Fatal("empty note reported a critical assumption")
	}
	n.Assumptions = append(n.Assumptions, Assumption{ID: "a1", Text: "x", Severity: SeverityLow})
	if n.HasCriticalAssumption() {
		t.Fatal("low severity counted as critical")
	}
	n.Assumptions = append(n.Assumptions, Assumption{ID: "a2", Text: "y", Severity: SeverityCritical})
	if !n.HasCriticalAssumption() {
		t.Fatal("critical assumption not detected")
	}
}
