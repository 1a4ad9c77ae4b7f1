//go:build dev
// +build dev

package logging

import (
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelColors = map[zapcore.Level]func(a ...interface{}) string{
	zapcore.DebugLevel: color.New(color.FgCyan, color.Bold).SprintFunc(),
	zapcore.InfoLevel:  color.New(color.FgGreen, color.Bold).SprintFunc(),
	zapcore.WarnLevel:  color.New(color.FgMagenta, color.Bold).SprintFunc(),
	zapcore.ErrorLevel: color.New(color.FgRed, color.Bold).SprintFunc(),
	zapcore.FatalLevel: color.New(color.FgHiRed, color.Bold, color.BgBlack).SprintFunc(),
}

var levelLabels = map[zapcore.Level]string{
	zapcore.DebugLevel: "DBG",
	zapcore.InfoLevel:  "INF",
	zapcore.WarnLevel:  "WRN",
	zapcore.ErrorLevel: "ERR",
	zapcore.FatalLevel: "FTL",
}

// InitLogger installs a colored console logger plus a JSON file logger at debug level.
func InitLogger(logFilePath string) (*os.File, error) {
	file, err := openLogFile(logFilePath)
	if err != nil {
		return nil, err
	}

	dim := color.New(color.FgHiBlack).SprintFunc()

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(dim(t.Format("15:04:05")))
	}
	consoleCfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		label, ok := levelLabels[l]
		if !ok {
			label = l.CapitalString()
		}
		if paint, ok := levelColors[l]; ok {
			label = paint(label)
		}
		enc.AppendString(label)
	}

	// Multi-writer: console (colors) + file (JSON)
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(file), zapcore.DebugLevel),
	)
	SetLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))

	return file, nil
}
