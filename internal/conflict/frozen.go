package conflict

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/vordr/internal/note"
)

// frozenRule checks pattern-based frozen sections. Sections are scanned in
// stored order and the first violation wins. Line-range sections validate in
// the schema but are never evaluated here: the hook input carries no
// line-level edit metadata to diff against.
type frozenRule struct{}

func (frozenRule) Name() string { return "frozen-sections" }

func (frozenRule) Apply(n *note.Note, newContent, oldContent string, rep *Report) {
	if rep.Frozen != nil {
		return
	}
	for _, fs := range n.FrozenSections {
		if fs.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?im)" + fs.Pattern)
		if err != nil {
			// An uncompilable pattern is treated as no match, never fatal.
			continue
		}

		newLoc := re.FindStringIndex(newContent)
		if newLoc == nil {
			continue
		}
		// Without a prior version, pattern presence alone is not a
		// violation: newly created files would always trip otherwise.
		if oldContent == "" {
			continue
		}
		oldLoc := re.FindStringIndex(oldContent)
		if oldLoc == nil {
			continue
		}

		oldText := oldContent[oldLoc[0]:oldLoc[1]]
		newText := newContent[newLoc[0]:newLoc[1]]
		if oldText == newText {
			continue
		}
		if exceptionAllows(oldText, newText, fs.Exceptions) {
			continue
		}

		rep.Frozen = &FrozenViolation{
			FrozenID: fs.ID,
			Reason:   fs.Reason,
			Details:  fmt.Sprintf("Pattern %q was modified.\n\nOld:\n%s\n\nNew:\n%s", fs.Pattern, oldText, newText),
		}
		return
	}
}

// exceptionAllows suppresses a candidate violation when the section's
// exceptions permit it. The single recognized exception is "optional
// properties with defaults": the change only widens a field to optional
// (a '?' marker appears in the new text that the old text lacked).
func exceptionAllows(oldText, newText, exceptions string) bool {
	if exceptions == "" {
		return false
	}
	lower := strings.ToLower(exceptions)
	if strings.Contains(lower, "optional") && strings.Contains(lower, "default") {
		if strings.Contains(newText, "?") && !strings.Contains(oldText, "?") {
			return true
		}
	}
	return false
}
