package core

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogging builds a JSON zap logger writing to both stdout and a file in cfg.LogDir.
// Gin's request/error writers share the same output.
// Caller should close the returned io.Closer on shutdown.
func SetupLogging(cfg Config, filename string) (*zap.Logger, io.Closer, error) {
	dir := cfg.LogDir
	if dir == "" {
		dir = "/var/log/academic-portal"
	}
	if filename == "" {
		filename = "app.log"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create log dir %s", dir)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open log file %s", path)
	}

	level, err := zapcore.ParseLevel(firstNonEmpty(cfg.LogLevel, "info"))
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "invalid log level")
	}

	mw := io.MultiWriter(os.Stdout, f)
	gin.DefaultWriter = mw
	gin.DefaultErrorWriter = mw

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	logger := zap.New(
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(mw), level),
		zap.AddCaller(),
	)
	return logger, f, nil
}
