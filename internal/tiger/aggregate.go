package tiger

// syntaxKeys are the diagnostic keys classified as syntax-level problems.
// The set is closed and not configurable.
var syntaxKeys = map[string]bool{
	"syntax":    true,
	"structure": true,
	"encoding":  true,
}

// Report is the severity-bucketed view of a diagnostic sequence.
type Report struct {
	Valid   bool
	Total   int
	Buckets map[string][]Diagnostic
	All     []Diagnostic
}

// BucketBySeverity partitions diagnostics into per-severity buckets,
// preserving input order within each bucket. A diagnostic without a severity
// lands in the "unknown" bucket rather than failing. Valid is true iff the
// sequence is empty.
func BucketBySeverity(diags []Diagnostic) Report {
	buckets := make(map[string][]Diagnostic)
	for _, d := range diags {
		sev := d.Severity
		if sev == "" {
			sev = SeverityUnknown
		}
		buckets[sev] = append(buckets[sev], d)
	}
	return Report{
		Valid:   len(diags) == 0,
		Total:   len(diags),
		Buckets: buckets,
		All:     diags,
	}
}

// FilterByFile selects the diagnostics having at least one location whose
// path equals the given path exactly — string equality, no normalization or
// globbing. A diagnostic with several matching locations appears once, with
// its location set untouched.
func FilterByFile(diags []Diagnostic, path string) []Diagnostic {
	var matched []Diagnostic
	for _, d := range diags {
		for _, loc := range d.Locations {
			if loc.Path == path {
				matched = append(matched, d)
				break
			}
		}
	}
	return matched
}

// FilterSyntax selects the diagnostics whose key is one of the syntax-level
// keys. A diagnostic with no key is excluded.
func FilterSyntax(diags []Diagnostic) []Diagnostic {
	var matched []Diagnostic
	for _, d := range diags {
		if syntaxKeys[d.Key] {
			matched = append(matched, d)
		}
	}
	return matched
}
