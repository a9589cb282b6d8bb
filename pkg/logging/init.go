package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

const (
	JSON = "json"
	Text = "text"
	Tint = "tint"
)

const redacted = "[redacted]"

// sensitiveKeys are attribute keys whose values never reach the log output.
var sensitiveKeys = map[string]bool{
	"password":  true,
	"token":     true,
	"secret":    true,
	"sessionId": true,
}

// Options configures the default logger.
type Options struct {
	Type   string
	Level  string
	Writer io.Writer // defaults to os.Stderr
}

// Initialize installs the default slog logger. Output goes to stderr unless
// a writer is given so the hook does not mix logs into a build tool's stdout.
func Initialize(opts Options) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(opts.Level))
	if err != nil {
		return fmt.Errorf("could not parse log level: %v", err)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	var (
		logHandlerOptions = slog.HandlerOptions{
			AddSource:   logLevel <= slog.LevelDebug,
			Level:       logLevel,
			ReplaceAttr: redact,
		}
		logHandler slog.Handler
	)

	switch opts.Type {
	case JSON:
		logHandler = slog.NewJSONHandler(w, &logHandlerOptions)
	case Text:
		logHandler = slog.NewTextHandler(w, &logHandlerOptions)
	case Tint:
		logHandler = tint.NewHandler(w, &tint.Options{
			AddSource:   logHandlerOptions.AddSource,
			Level:       logHandlerOptions.Level,
			ReplaceAttr: redact,
		})
	default:
		return fmt.Errorf("unknown logging type: %s", opts.Type)
	}

	slog.SetDefault(slog.New(logHandler))
	slog.Debug("logging initialized", "logLevel", logLevel, "type", opts.Type)
	return nil
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[a.Key] && a.Value.Kind() == slog.KindString && a.Value.String() != "" {
		a.Value = slog.StringValue(redacted)
	}
	return a
}
