// Package logging builds the diagnostic logger shared by the CLI and the
// expense store.
package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

const prefix = "expense-tracker"

// New returns a logger writing to w at the named level (debug, info, warn, error)
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	}), nil
}
