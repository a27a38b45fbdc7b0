package ack

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/vordr/internal/note"
)

// Acknowledgment phrasings accepted from the assistant.
var ackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`i acknowledge the design intent`),
	regexp.MustCompile(`i acknowledge.*constraints`),
	regexp.MustCompile(`i understand the design constraints`),
	regexp.MustCompile(`i\s+have\s+read\s+.*design\s+note`),
	regexp.MustCompile(`i\s+will\s+respect\s+.*constraints`),
}

// Verifier checks whether an assistant message acknowledges a note's
// constraints. It is advisory: verification never sits on the blocking path.
type Verifier struct {
	note     *note.Note
	filePath string
	fileName string
}

// NewVerifier creates a Verifier for one note and file.
func NewVerifier(n *note.Note, filePath string) *Verifier {
	return &Verifier{note: n, filePath: filePath, fileName: filepath.Base(filePath)}
}

// Verify reports whether the message satisfies the note's acknowledgment
// requirement, with a short explanation. An empty message means "no message
// available to check" and passes: the requirement has been injected and
// enforcement is trusted to the surrounding host.
func (v *Verifier) Verify(message string) (bool, string) {
	if !v.note.RequiresAcknowledgment {
		return true, "note does not require explicit acknowledgment"
	}
	if message == "" {
		return true, "acknowledgment requirement injected"
	}
	if v.acknowledged(strings.ToLower(message)) {
		return true, "acknowledgment verified"
	}
	return false, "acknowledgment not found in message"
}

func (v *Verifier) acknowledged(lower string) bool {
	for _, p := range ackPatterns {
		if p.MatchString(lower) && strings.Contains(lower, strings.ToLower(v.fileName)) {
			return true
		}
	}
	// Strict mode: critical notes may acknowledge by enumerating their
	// constraints instead of using a stock phrase.
	if RequiresEnumeration(v.note) {
		return v.enumerates(lower)
	}
	return false
}

// enumerates requires at least half of the critical constraint ids (critical
// assumptions and frozen sections) to be mentioned.
func (v *Verifier) enumerates(lower string) bool {
	mentioned, total := 0, 0

	for _, a := range v.note.Assumptions {
		if a.Severity != note.SeverityCritical {
			continue
		}
		total++
		if strings.Contains(lower, strings.ToLower(a.ID)) {
			mentioned++
		}
	}
	for _, f := range v.note.FrozenSections {
		total++
		if strings.Contains(lower, strings.ToLower(f.ID)) {
			mentioned++
		} else if f.Pattern != "" && strings.Contains(lower, strings.ToLower(f.Pattern)) {
			mentioned++
		}
	}

	if total == 0 {
		return true
	}
	return float64(mentioned) >= float64(total)/2
}
