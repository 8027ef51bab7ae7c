package diag

// Severity is ordered: a bigger value is more severe, Bag.Sort relies on it.
type Severity uint8

const (
	SevInfo Severity = iota // timings and other observability notes
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// IsError reports whether a diagnostic of this severity fails the program.
func (s Severity) IsError() bool { return s >= SevError }
