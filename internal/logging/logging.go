package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// ParseLevel maps a configured level name to a slog level. Unknown names
// map to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w. Format "text" produces colored,
// human-readable lines; anything else produces JSON.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	if format != "text" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           log.Level(lvl),
		Formatter:       log.TextFormatter,
	})
	logger.SetStyles(textStyles())
	return slog.New(logger)
}

func textStyles() *log.Styles {
	styles := log.DefaultStyles()
	levels := map[log.Level]string{
		log.DebugLevel: "#7E57C2",
		log.InfoLevel:  "#04B575",
		log.WarnLevel:  "#EE6FF8",
		log.ErrorLevel: "#FF6B6B",
	}
	for lvl, color := range levels {
		styles.Levels[lvl] = lipgloss.NewStyle().
			SetString(lvl.String()).
			Bold(true).
			MaxWidth(5).
			Foreground(lipgloss.Color(color))
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	return styles
}
