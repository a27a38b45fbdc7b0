// Package hook implements the PreToolUse boundary: it reads one intercepted
// write or edit as JSON on stdin, consults the note store and conflict
// detector, and answers with an allow/block decision.
//
// The policy is fail-open: any internal error, missing path, or unreadable
// note resolves to allow with no context injected. The single path permitted
// to deny an operation is an explicit frozen-section violation.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/vordr/internal/ack"
	"github.com/starford/vordr/internal/audit"
	"github.com/starford/vordr/internal/conflict"
	"github.com/starford/vordr/internal/note"
	"github.com/starford/vordr/internal/notestore"
)

// Exit codes of the hook protocol.
const (
	ExitAllowed = 0
	ExitBlocked = 2
)

// Input is the hook payload from the host.
type Input struct {
	ToolName  string         `json:"tool_name"`
	ToolInput map[string]any `json:"tool_input"`
	Cwd       string         `json:"cwd"`
}

// Response is the decision answered on stdout (allow) or stderr (block).
type Response struct {
	Decision          string `json:"decision"`
	Continue          bool   `json:"continue,omitempty"`
	Blocked           bool   `json:"blocked,omitempty"`
	Reason            string `json:"reason,omitempty"`
	AdditionalContext string `json:"additionalContext,omitempty"`
	SystemMessage     string `json:"systemMessage,omitempty"`
}

// Runner executes one hook invocation.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner. The logger must write to stderr only; stdout
// belongs to the protocol.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run processes one intercepted tool call and returns the process exit code.
func (r *Runner) Run(in io.Reader, out, errw io.Writer) int {
	input, err := decodeInput(in)
	if err != nil {
		r.logger.Warn("hook: unreadable input", slog.String("error", err.Error()))
		return allow(out)
	}

	filePath, ok := extractFilePath(input.ToolInput)
	if !ok {
		// Not a file write we understand; not our concern.
		return allow(out)
	}

	cwd := input.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	store, err := notestore.Open(cwd, r.logger)
	if err != nil {
		r.logger.Warn("hook: store unavailable", slog.String("error", err.Error()))
		return allow(out)
	}

	n := store.Load(filePath)
	if n == nil {
		return allow(out)
	}
	noteHash := store.Resolver().Hash(filePath)

	oldContent, newContent := extractContent(input.ToolName, input.ToolInput)
	if newContent != "" {
		rep := conflict.Detect(n, newContent, oldContent)

		if rep.Frozen != nil {
			reason := formatFrozenError(rep.Frozen)
			r.record(store.Root(), audit.Decision{
				Tool: input.ToolName, FilePath: filePath, NoteHash: noteHash,
				Decision: "block", Reason: "frozen section " + rep.Frozen.FrozenID,
			})
			writeJSON(errw, Response{Decision: "block", Blocked: true, Reason: reason})
			return ExitBlocked
		}

		for _, v := range rep.Assumptions {
			if v.Severity == note.SeverityCritical {
				fmt.Fprintf(errw, "WARNING: %s", formatAssumptionWarning(v))
			}
		}
	}

	r.record(store.Root(), audit.Decision{
		Tool: input.ToolName, FilePath: filePath, NoteHash: noteHash,
		Decision: "allow", Reason: "note injected",
	})

	writeJSON(out, Response{
		Decision:          "allow",
		Continue:          true,
		AdditionalContext: ack.Format(n, filePath),
		SystemMessage:     "Design note loaded for " + filepath.Base(filePath),
	})
	return ExitAllowed
}

// record logs the decision to the audit database. Best effort: a failing
// audit log never changes the decision.
func (r *Runner) record(notesRoot string, d audit.Decision) {
	log, err := audit.Open(audit.FileFor(notesRoot))
	if err != nil {
		r.logger.Debug("hook: audit unavailable", slog.String("error", err.Error()))
		return
	}
	defer log.Close()
	if err := log.Record(d); err != nil {
		r.logger.Debug("hook: audit record failed", slog.String("error", err.Error()))
	}
}

func decodeInput(in io.Reader) (*Input, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	var input Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// extractFilePath pulls the target path from the tool input. Whole-file
// writes use "file_path"; range edits may use "path".
func extractFilePath(toolInput map[string]any) (string, bool) {
	for _, key := range []string{"file_path", "path"} {
		if v, ok := toolInput[key].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// extractContent returns the (old, new) content pair for the change. For
// whole-file writes the previous version is read from disk when the file
// exists; a read failure just means no old content.
func extractContent(toolName string, toolInput map[string]any) (oldContent, newContent string) {
	switch strings.ToLower(toolName) {
	case "write":
		newContent, _ = toolInput["content"].(string)
		if path, ok := extractFilePath(toolInput); ok {
			if data, err := os.ReadFile(path); err == nil {
				oldContent = string(data)
			}
		}
	case "edit":
		oldContent, _ = toolInput["old_string"].(string)
		newContent, _ = toolInput["new_string"].(string)
	}
	return oldContent, newContent
}

func allow(out io.Writer) int {
	writeJSON(out, Response{Decision: "allow", Continue: true})
	return ExitAllowed
}

func writeJSON(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(resp)
}

func formatFrozenError(v *conflict.FrozenViolation) string {
	return fmt.Sprintf(`
FROZEN SECTION VIOLATION

Frozen Section: %s
Reason: %s

Details:
%s

Resolution:
- Either request an exception in the design note
- Or modify a different section
- Or update the frozen section definition with "vordr create"
`, v.FrozenID, v.Reason, v.Details)
}

func formatAssumptionWarning(v conflict.AssumptionViolation) string {
	return fmt.Sprintf(`
ASSUMPTION VIOLATION DETECTED

Assumption: %s
%q

Violation Type: %s
Severity: %s

Details:
%s

Please confirm this change does not violate the documented assumption.
`, v.AssumptionID, v.AssumptionText, v.ViolationType, v.Severity, v.Details)
}
