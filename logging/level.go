package logging

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Level is a log severity, ordered DEBUG < INFO < WARN < ERROR.
type Level int

const (
	// DEBUG is for planner-internal diagnostics (goal probes, c_best
	// updates) that are noisy but useful when tuning a schedule.
	DEBUG Level = iota
	// INFO is for high-level progress: planner start/stop, solution found.
	INFO
	// WARN is for recoverable oddities: a degenerate sample, a schedule
	// entry consumed with zero remaining count.
	WARN
	// ERROR is for conditions that abort the current planning attempt.
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

// LevelFromString parses a level name case-insensitively. "warning" is
// accepted as an alias for "warn".
func LevelFromString(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return 0, errors.Errorf("logging: unrecognized level %q", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := LevelFromString(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
