package tiger

import "encoding/json"

// SeverityUnknown is the bucket for diagnostics that carry no severity field.
const SeverityUnknown = "unknown"

// Location is one source position a diagnostic points at. Path is relative
// to the mod root.
type Location struct {
	Path   string `json:"path"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Diagnostic is one finding from a tiger run. The fields this server
// aggregates on are decoded; the raw array element is retained so any other
// fields tiger emits reach the caller unchanged. Tiger's output schema is
// not closed and must not be treated as such here.
type Diagnostic struct {
	Severity  string     `json:"severity,omitempty"`
	Key       string     `json:"key,omitempty"`
	Locations []Location `json:"locations,omitempty"`

	raw json.RawMessage
}

func (d *Diagnostic) UnmarshalJSON(data []byte) error {
	var known struct {
		Severity  string     `json:"severity"`
		Key       string     `json:"key"`
		Locations []Location `json:"locations"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	d.Severity = known.Severity
	d.Key = known.Key
	d.Locations = known.Locations
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (d Diagnostic) MarshalJSON() ([]byte, error) {
	if d.raw != nil {
		return d.raw, nil
	}
	// Hand-constructed diagnostic (tests, mostly): emit the known fields.
	return json.Marshal(struct {
		Severity  string     `json:"severity,omitempty"`
		Key       string     `json:"key,omitempty"`
		Locations []Location `json:"locations,omitempty"`
	}{d.Severity, d.Key, d.Locations})
}
