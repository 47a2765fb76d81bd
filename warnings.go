package spatialtext

import (
	"fmt"
	"strings"
)

// WarningType classifies a non-fatal loading problem.
type WarningType int

const (
	// WarningSkippedEntry means an archive entry could not be loaded and
	// was left out of the result.
	WarningSkippedEntry WarningType = iota
)

// String returns the name of the warning type.
func (t WarningType) String() string {
	switch t {
	case WarningSkippedEntry:
		return "skipped entry"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue met while loading.
type Warning struct {
	Type    WarningType
	Source  string
	Message string
}

// String returns a one-line description of the warning.
func (w Warning) String() string {
	if w.Source == "" {
		return fmt.Sprintf("%s: %s", w.Type, w.Message)
	}
	return fmt.Sprintf("%s %s: %s", w.Type, w.Source, w.Message)
}

// FormatWarnings joins warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
