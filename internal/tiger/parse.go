package tiger

import (
	"encoding/json"
	"fmt"
)

// ParseDiagnostics interprets the streams of a completed --json run. The
// contract is an explicit three-way branch:
//
//   - stdout non-empty: decode it as a JSON array of diagnostics; a decode
//     failure is MalformedOutput, never an empty success.
//   - stdout empty, stderr non-empty: the tool's own error reporting takes
//     precedence over assuming a clean run; ToolError with stderr verbatim.
//   - both empty: a genuinely clean run, zero diagnostics.
func ParseDiagnostics(out Outcome) ([]Diagnostic, error) {
	switch {
	case out.Stdout != "":
		var diags []Diagnostic
		if err := json.Unmarshal([]byte(out.Stdout), &diags); err != nil {
			return nil, &Error{
				Kind:    KindMalformedOutput,
				Message: fmt.Sprintf("JSON parsing error: %v", err),
			}
		}
		return diags, nil
	case out.Stderr != "":
		return nil, &Error{
			Kind:    KindToolError,
			Message: "tiger process produced an error",
			Stderr:  out.Stderr,
		}
	default:
		return nil, nil
	}
}

// ParseConsolidated returns the raw consolidate-mode report. Consolidate
// output is human-readable text and is never decoded, but stderr keeps the
// same precedence it has for JSON runs.
func ParseConsolidated(out Outcome) (string, error) {
	if out.Stderr != "" {
		return "", &Error{
			Kind:    KindToolError,
			Message: "tiger process produced an error",
			Stderr:  out.Stderr,
		}
	}
	return out.Stdout, nil
}
