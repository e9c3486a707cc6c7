// Package logging builds the zerolog logger shared by the command and the service middleware.
package logging

import (
	"io"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"
)

// New returns a timestamped console logger writing to w at the given level
// ("debug", "info", "warn", ...). An empty level means info.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel

	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), ewrap.Wrap(err, "parsing log level")
		}

		lvl = parsed
	}

	logWriter := zerolog.ConsoleWriter{Out: w, NoColor: true}

	return zerolog.New(logWriter).Level(lvl).With().Timestamp().Logger(), nil
}
