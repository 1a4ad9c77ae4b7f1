//go:build !dev
// +build !dev

package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger installs a JSON logger writing to logFilePath at info level.
func InitLogger(logFilePath string) (*os.File, error) {
	file, err := openLogFile(logFilePath)
	if err != nil {
		return nil, err
	}

	// JSON logs only, no console output
	core := zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(file), zapcore.InfoLevel)
	SetLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))

	return file, nil
}
