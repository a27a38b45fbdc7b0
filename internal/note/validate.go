package note

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vordr/internal/apperr"
)

// Validate checks the note against the schema. Checks run in a fixed order
// and stop at the first failure: required top-level fields, version, then
// each sub-collection's entry constraints. Validation is pure; it is run
// before every persisted write and after every read.
func (n *Note) Validate() error {
	if err := validation.ValidateStruct(n,
		validation.Field(&n.Version, validation.Required),
		validation.Field(&n.FilePath, validation.Required),
		validation.Field(&n.CreatedAt, validation.Required),
		validation.Field(&n.UpdatedAt, validation.Required),
	); err != nil {
		return schemaErr("missing required field: %v", err)
	}

	if n.Version != SchemaVersion {
		return schemaErr("invalid version %q, expected %q", n.Version, SchemaVersion)
	}

	for i, a := range n.Assumptions {
		if err := a.validate(); err != nil {
			return schemaErr("assumptions[%d]: %v", i, err)
		}
	}
	for i, c := range n.Constraints {
		if err := c.validate(); err != nil {
			return schemaErr("constraints[%d]: %v", i, err)
		}
	}
	for i, tr := range n.Tradeoffs {
		if err := tr.validate(); err != nil {
			return schemaErr("tradeoffs[%d]: %v", i, err)
		}
	}
	for i, fs := range n.FrozenSections {
		if err := fs.validate(); err != nil {
			return schemaErr("frozenSections[%d]: %v", i, err)
		}
	}
	return nil
}

func (a Assumption) validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Text, validation.Required),
		validation.Field(&a.Severity, validation.In(SeverityCritical, SeverityMedium, SeverityLow)),
	)
}

func (c Constraint) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Text, validation.Required),
		validation.Field(&c.Type, validation.In(ConstraintFunctional, ConstraintAPI, ConstraintPerformance)),
	)
}

func (t Tradeoff) validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Shortcut, validation.Required),
		validation.Field(&t.Reason, validation.Required),
		validation.Field(&t.DebtLevel, validation.In(DebtHigh, DebtMedium, DebtLow)),
	)
}

func (f FrozenSection) validate() error {
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
		validation.Field(&f.Reason, validation.Required),
	); err != nil {
		return err
	}
	if f.Pattern == "" && len(f.LineRange) == 0 {
		return fmt.Errorf("must have either pattern or lineRange")
	}
	if f.Pattern == "" && len(f.LineRange) != 2 {
		return fmt.Errorf("lineRange must be [start, end]")
	}
	return nil
}

func schemaErr(format string, args ...any) error {
	return fmt.Errorf("note: "+format+": %w", append(args, apperr.ErrSchemaInvalid)...)
}
