package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Format selects how log entries are rendered.
type Format string

const (
	// FormatJSON renders one JSON object per line.
	FormatJSON Format = "json"
	// FormatText renders plain console lines: time, level, message, fields.
	FormatText Format = "text"
	// FormatColor is FormatText with ANSI-colored level names.
	FormatColor Format = "color"
)

// ParseFormat parses a format name. The match is case-insensitive and the
// empty string selects FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatText, FormatColor:
		return f, nil
	default:
		return "", fmt.Errorf("log: unknown format %q", s)
	}
}

// ParseLevel parses a level name such as "debug" or "WARN". The empty
// string selects InfoLevel.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	if strings.EqualFold(s, "warning") {
		return zapcore.WarnLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log: %w", err)
	}
	return lvl, nil
}

func (f Format) encoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	switch f {
	case FormatText:
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		return zapcore.NewConsoleEncoder(cfg)
	case FormatColor:
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	default:
		return zapcore.NewJSONEncoder(cfg)
	}
}
