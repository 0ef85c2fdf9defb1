package log

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

type Level zapcore.Level

const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	WarnLevel  = Level(zapcore.WarnLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
	FatalLevel = Level(zapcore.FatalLevel)
	PanicLevel = Level(zapcore.PanicLevel)
)

func ParseLevel(text string) (Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return InfoLevel, errors.WithMessagef(err, "invalid log level %q", text)
	}
	return Level(level), nil
}

type OutputEncoder func(zapcore.EncoderConfig) zapcore.Encoder

var (
	JsonOutputEncoder    OutputEncoder = zapcore.NewJSONEncoder
	ConsoleOutputEncoder OutputEncoder = zapcore.NewConsoleEncoder
)

func ParseOutputEncoder(text string) (OutputEncoder, error) {
	switch strings.ToLower(text) {
	case "json":
		return JsonOutputEncoder, nil
	case "console":
		return ConsoleOutputEncoder, nil
	}
	return nil, errors.Errorf("unknown log encoder %q", text)
}

type LevelEncoder func(zapcore.Level, zapcore.PrimitiveArrayEncoder)

var (
	BracketLevelEncoder LevelEncoder = func(level zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString("[" + level.CapitalString() + "]")
	}
	CapitalLevelEncoder   LevelEncoder = zapcore.CapitalLevelEncoder
	LowercaseLevelEncoder LevelEncoder = zapcore.LowercaseLevelEncoder
)

func ParseLevelEncoder(text string) (LevelEncoder, error) {
	switch strings.ToLower(text) {
	case "bracket":
		return BracketLevelEncoder, nil
	case "capital":
		return CapitalLevelEncoder, nil
	case "lowercase":
		return LowercaseLevelEncoder, nil
	}
	return nil, errors.Errorf("unknown log level encoder %q", text)
}

type CallerEncoder func(zapcore.EntryCaller, zapcore.PrimitiveArrayEncoder)

var (
	ShortCallerEncoder CallerEncoder = zapcore.ShortCallerEncoder
	FullCallerEncoder  CallerEncoder = zapcore.FullCallerEncoder
)

// ParseCallerEncoder maps "" and "none" to a nil encoder, which leaves the caller out.
func ParseCallerEncoder(text string) (CallerEncoder, error) {
	switch strings.ToLower(text) {
	case "", "none":
		return nil, nil
	case "short":
		return ShortCallerEncoder, nil
	case "full":
		return FullCallerEncoder, nil
	}
	return nil, errors.Errorf("unknown log caller encoder %q", text)
}
