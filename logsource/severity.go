package logsource

// Severity orders log sites from least to most urgent. Numeric order
// matters: SetMinSeverity compares against this scale, and NoLogs is
// defined as the maximum value so that setting it suppresses every
// event regardless of future severities added below it.
type Severity uint16

const (
	Trace Severity = iota
	Debug
	Info
	Warning
	Error
	Critical

	// NoLogs is not a real severity any event can carry; it is a
	// sentinel min-severity value that filters out everything.
	NoLogs Severity = 0xffff
)

func (s Severity) String() string {
	switch s {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	case NoLogs:
		return "no_logs"
	default:
		return "unknown"
	}
}
