// Package authoring implements the interactive note builder: a sequence of
// prompt steps that accumulates a Note value. Pure user interaction, kept
// outside the core store and detector.
package authoring

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/starford/vordr/internal/note"
)

// Build runs the interactive authoring flow and returns the assembled note.
// Returns huh.ErrUserAborted when the user cancels.
func Build(filePath string) (*note.Note, error) {
	n := note.New(filePath)

	var purpose, decisions, rationale, tags string
	intentForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Purpose").
				Description("What does this file do?").
				Value(&purpose),
			huh.NewText().
				Title("Key decisions").
				Description("One per line; leave empty to skip.").
				Value(&decisions),
			huh.NewText().
				Title("Rationale").
				Description("Why is it built this way?").
				Value(&rationale),
			huh.NewInput().
				Title("Tags").
				Description("Comma-separated; leave empty to skip.").
				Value(&tags),
		),
	)
	if err := intentForm.Run(); err != nil {
		return nil, err
	}

	n.DesignIntent.Purpose = strings.TrimSpace(purpose)
	n.DesignIntent.Rationale = strings.TrimSpace(rationale)
	n.DesignIntent.KeyDecisions = splitLines(decisions)
	n.Tags = splitComma(tags)

	if err := collectAssumptions(n); err != nil {
		return nil, err
	}
	if err := collectConstraints(n); err != nil {
		return nil, err
	}
	if err := collectTradeoffs(n); err != nil {
		return nil, err
	}
	if err := collectFrozenSections(n); err != nil {
		return nil, err
	}

	ackForm := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Require explicit acknowledgment before edits?").
			Value(&n.RequiresAcknowledgment),
	))
	if err := ackForm.Run(); err != nil {
		return nil, err
	}

	return n, nil
}

func collectAssumptions(n *note.Note) error {
	for i := 1; ; i++ {
		more := false
		if err := confirm(fmt.Sprintf("Add assumption #%d?", i), &more); err != nil {
			return err
		}
		if !more {
			return nil
		}

		var text, severity string
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Assumption").Value(&text),
			huh.NewSelect[string]().
				Title("Severity").
				Options(huh.NewOptions(note.SeverityCritical, note.SeverityMedium, note.SeverityLow)...).
				Value(&severity),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		n.Assumptions = append(n.Assumptions, note.Assumption{
			ID:       fmt.Sprintf("a%d", i),
			Text:     strings.TrimSpace(text),
			Severity: severity,
		})
	}
}

func collectConstraints(n *note.Note) error {
	for i := 1; ; i++ {
		more := false
		if err := confirm(fmt.Sprintf("Add constraint #%d?", i), &more); err != nil {
			return err
		}
		if !more {
			return nil
		}

		var text, typ, reason string
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Constraint").Value(&text),
			huh.NewSelect[string]().
				Title("Type").
				Options(huh.NewOptions(note.ConstraintFunctional, note.ConstraintAPI, note.ConstraintPerformance)...).
				Value(&typ),
			huh.NewInput().Title("Reason").Description("Optional.").Value(&reason),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		n.Constraints = append(n.Constraints, note.Constraint{
			ID:     fmt.Sprintf("c%d", i),
			Text:   strings.TrimSpace(text),
			Type:   typ,
			Reason: strings.TrimSpace(reason),
		})
	}
}

func collectTradeoffs(n *note.Note) error {
	for i := 1; ; i++ {
		more := false
		if err := confirm(fmt.Sprintf("Add tradeoff #%d?", i), &more); err != nil {
			return err
		}
		if !more {
			return nil
		}

		var shortcut, reason, debt, plan string
		form := huh.NewForm(huh.NewGroup(
			huh.NewText().Title("Shortcut taken").Value(&shortcut),
			huh.NewText().Title("Reason").Value(&reason),
			huh.NewSelect[string]().
				Title("Debt level").
				Options(huh.NewOptions(note.DebtHigh, note.DebtMedium, note.DebtLow)...).
				Value(&debt),
			huh.NewInput().Title("Repayment plan").Description("Optional.").Value(&plan),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if strings.TrimSpace(shortcut) == "" || strings.TrimSpace(reason) == "" {
			continue
		}
		n.Tradeoffs = append(n.Tradeoffs, note.Tradeoff{
			ID:            fmt.Sprintf("t%d", i),
			Shortcut:      strings.TrimSpace(shortcut),
			Reason:        strings.TrimSpace(reason),
			DebtLevel:     debt,
			RepaymentPlan: strings.TrimSpace(plan),
		})
	}
}

func collectFrozenSections(n *note.Note) error {
	for i := 1; ; i++ {
		more := false
		if err := confirm(fmt.Sprintf("Add frozen section #%d?", i), &more); err != nil {
			return err
		}
		if !more {
			return nil
		}

		var pattern, reason, exceptions string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Pattern").
				Description("Regular expression matching the immutable region.").
				Value(&pattern),
			huh.NewInput().Title("Reason").Value(&reason),
			huh.NewInput().Title("Exceptions").Description("Optional.").Value(&exceptions),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if strings.TrimSpace(pattern) == "" || strings.TrimSpace(reason) == "" {
			continue
		}
		n.FrozenSections = append(n.FrozenSections, note.FrozenSection{
			ID:         fmt.Sprintf("f%d", i),
			Pattern:    strings.TrimSpace(pattern),
			Reason:     strings.TrimSpace(reason),
			Exceptions: strings.TrimSpace(exceptions),
		})
	}
}

func confirm(title string, value *bool) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(value),
	)).Run()
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
