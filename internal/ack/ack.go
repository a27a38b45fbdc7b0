// Package ack renders design intent notes into acknowledgment requirements
// and verifies acknowledgment wording. Pure text functions of a note.
package ack

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/vordr/internal/note"
)

const rule = "================================================================================"

// Format renders the note into the context block injected before a write:
// design intent, assumptions, constraints, tradeoffs, frozen sections, then
// an acknowledgment instruction listing exactly the categories the note has.
func Format(n *note.Note, filePath string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nDESIGN INTENT NOTE DETECTED\n%s\n\nFile: %s\n\n", rule, rule, filePath)

	intent := n.DesignIntent
	if intent.Purpose != "" || len(intent.KeyDecisions) > 0 || intent.Rationale != "" {
		b.WriteString("DESIGN INTENT:\n")
		if intent.Purpose != "" {
			fmt.Fprintf(&b, "  Purpose: %s\n", intent.Purpose)
		}
		if len(intent.KeyDecisions) > 0 {
			b.WriteString("  Key Decisions:\n")
			for _, d := range intent.KeyDecisions {
				fmt.Fprintf(&b, "    - %s\n", d)
			}
		}
		if intent.Rationale != "" {
			fmt.Fprintf(&b, "  Rationale: %s\n", intent.Rationale)
		}
		b.WriteString("\n")
	}

	if len(n.Assumptions) > 0 {
		b.WriteString("ASSUMPTIONS (Must be maintained):\n")
		for _, a := range n.Assumptions {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", strings.ToUpper(severityOrDefault(a.Severity)), a.ID, a.Text)
		}
		b.WriteString("\n")
	}

	if len(n.Constraints) > 0 {
		b.WriteString("CONSTRAINTS (Active requirements):\n")
		for _, c := range n.Constraints {
			typ := c.Type
			if typ == "" {
				typ = note.ConstraintFunctional
			}
			fmt.Fprintf(&b, "  [%s] %s: %s\n", typ, c.ID, c.Text)
			if c.Reason != "" {
				fmt.Fprintf(&b, "      Reason: %s\n", c.Reason)
			}
		}
		b.WriteString("\n")
	}

	if len(n.Tradeoffs) > 0 {
		b.WriteString("KNOWN TRADEOFFS (Intentional shortcuts):\n")
		for _, t := range n.Tradeoffs {
			level := t.DebtLevel
			if level == "" {
				level = note.DebtMedium
			}
			fmt.Fprintf(&b, "  [%s] %s: %s\n", strings.ToUpper(level), t.ID, t.Shortcut)
			fmt.Fprintf(&b, "      Reason: %s\n", t.Reason)
			if t.RepaymentPlan != "" {
				fmt.Fprintf(&b, "      Repayment Plan: %s\n", t.RepaymentPlan)
			}
		}
		b.WriteString("\n")
	}

	if len(n.FrozenSections) > 0 {
		b.WriteString("FROZEN SECTIONS (DO NOT MODIFY):\n")
		for _, f := range n.FrozenSections {
			fmt.Fprintf(&b, "  %s:\n", f.ID)
			if f.Pattern != "" {
				fmt.Fprintf(&b, "      Pattern: %s\n", f.Pattern)
			}
			if len(f.LineRange) == 2 {
				fmt.Fprintf(&b, "      Lines: %d-%d\n", f.LineRange[0], f.LineRange[1])
			}
			fmt.Fprintf(&b, "      Reason: %s\n", f.Reason)
			if f.Exceptions != "" {
				fmt.Fprintf(&b, "      Exceptions: %s\n", f.Exceptions)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\nACKNOWLEDGMENT REQUIRED\n%s\n", rule, rule)

	if n.RequiresAcknowledgment {
		fmt.Fprintf(&b, "\nYou MUST explicitly state:\n  %q\n", "I acknowledge the design intent constraints for "+filepath.Base(filePath))
		b.WriteString("\nAnd confirm your understanding of:\n")
		if len(n.FrozenSections) > 0 {
			b.WriteString("  - Frozen sections that CANNOT be modified\n")
		}
		if n.HasCriticalAssumption() {
			b.WriteString("  - Critical assumptions that MUST be maintained\n")
		}
		if len(n.Constraints) > 0 {
			b.WriteString("  - Active constraints that apply to this file\n")
		}
		if len(n.Tradeoffs) > 0 {
			b.WriteString("  - Known tradeoffs and intentional shortcuts\n")
		}
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}

// RequiresEnumeration reports whether acknowledgment wording should be
// checked strictly: true when the note has any critical assumption or any
// frozen section.
func RequiresEnumeration(n *note.Note) bool {
	return n.HasCriticalAssumption() || len(n.FrozenSections) > 0
}

func severityOrDefault(s string) string {
	if s == "" {
		return note.SeverityMedium
	}
	return s
}
