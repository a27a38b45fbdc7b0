package ack

import (
	"strings"
	"testing"

	"github.com/starford/vordr/internal/note"
)

func fullNote() *note.Note {
	n := note.New("/project/src/handler.ts")
	n.DesignIntent = note.DesignIntent{
		Purpose:      "Event handler registry",
		KeyDecisions: []string{"Synchronous dispatch"},
		Rationale:    "Ordering must be deterministic",
	}
	n.Assumptions = []note.Assumption{
		{ID: "a1", Text: "Dispatch is single-threaded", Severity: note.SeverityCritical},
	}
	n.Constraints = []note.Constraint{
		{ID: "c1", Text: "Handlers must not block", Type: note.ConstraintPerformance, Reason: "Hot path"},
	}
	n.Tradeoffs = []note.Tradeoff{
		{ID: "t1", Shortcut: "No handler priorities", Reason: "Not needed yet", DebtLevel: note.DebtLow},
	}
	n.FrozenSections = []note.FrozenSection{
		{ID: "f1", Reason: "Public contract", Pattern: "export interface Config"},
	}
	return n
}

func TestFormatIncludesAllSections(t *testing.T) {
	out := Format(fullNote(), "/project/src/handler.ts")

	for _, want := range []string{
		"DESIGN INTENT NOTE DETECTED",
		"File: /project/src/handler.ts",
		"DESIGN INTENT:",
		"Purpose: Event handler registry",
		"- Synchronous dispatch",
		"ASSUMPTIONS (Must be maintained):",
		"[CRITICAL] a1: Dispatch is single-threaded",
		"CONSTRAINTS (Active requirements):",
		"[performance] c1: Handlers must not block",
		"KNOWN TRADEOFFS (Intentional shortcuts):",
		"[LOW] t1: No handler priorities",
		"FROZEN SECTIONS (DO NOT MODIFY):",
		"Pattern: export interface Config",
		"ACKNOWLEDGMENT REQUIRED",
		`"I acknowledge the design intent constraints for handler.ts"`,
		"Frozen sections that CANNOT be modified",
		"Critical assumptions that MUST be maintained",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted note missing %q", want)
		}
	}
}

func TestFormatOmitsEmptySections(t *testing.T) {
	n := note.New("/project/src/empty.ts")
	out := Format(n, n.FilePath)

	for _, absent := range []string{"ASSUMPTIONS", "CONSTRAINTS", "TRADEOFFS", "FROZEN SECTIONS"} {
		if strings.Contains(out, absent) {
			t.Errorf("empty note rendered section %q", absent)
		}
	}
	if !strings.Contains(out, "ACKNOWLEDGMENT REQUIRED") {
		t.Error("acknowledgment block missing")
	}
}

func TestFormatSkipsInstructionWhenNotRequired(t *testing.T) {
	n := fullNote()
	n.RequiresAcknowledgment = false
	out := Format(n, n.FilePath)
	if strings.Contains(out, "You MUST explicitly state") {
		t.Error("acknowledgment instruction rendered for a note that does not require it")
	}
}

func TestRequiresEnumeration(t *testing.T) {
	if RequiresEnumeration(note.New("/p/f.ts")) {
		t.Error("plain note requires enumeration")
	}
	if !RequiresEnumeration(fullNote()) {
		t.Error("critical note does not require enumeration")
	}
}

func TestVerifyStockPhrase(t *testing.T) {
	v := NewVerifier(fullNote(), "/project/src/handler.ts")

	ok, _ := v.Verify("I acknowledge the design intent constraints for handler.ts")
	if !ok {
		t.Error("stock acknowledgment rejected")
	}

	// The phrase alone is not enough without naming the file.
	ok, _ = v.Verify("I acknowledge the design intent constraints")
	if ok {
		t.Error("acknowledgment accepted without the file name")
	}
}

func TestVerifyByEnumeration(t *testing.T) {
	v := NewVerifier(fullNote(), "/project/src/handler.ts")

	// Two critical ids (a1, f1); mentioning one of two meets the half bar.
	ok, _ := v.Verify("I will keep a1 in mind while changing the handler")
	if !ok {
		t.Error("half enumeration rejected")
	}

	ok, _ = v.Verify("looks good, shipping it")
	if ok {
		t.Error("unrelated message accepted")
	}
}

func TestVerifyNotRequired(t *testing.T) {
	n := fullNote()
	n.RequiresAcknowledgment = false
	ok, reason := NewVerifier(n, n.FilePath).Verify("whatever")
	if !ok {
		t.Errorf("verification failed for a note that does not require it: %s", reason)
	}
}

func TestVerifyEmptyMessagePasses(t *testing.T) {
	ok, _ := NewVerifier(fullNote(), "/project/src/handler.ts").Verify("")
	if !ok {
		t.Error("empty message treated as a failed acknowledgment")
	}
}
