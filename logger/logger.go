package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/awantoch/formrelay/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	userLogger     *log.Logger
	userWriter     io.Writer = os.Stdout
	internalLogger *zap.SugaredLogger
	loggerMu       sync.RWMutex
	loggerMode     = "production"
)

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

func init() {
	userLogger = log.New(userWriter, "", 0)
	initLoggers(loggerMode)
}

func initLoggers(mode string) {
	// Internal logger: to stderr, with levels and debug support
	internalCfg := zap.NewProductionConfig()
	internalCfg.OutputPaths = []string{"stderr"}
	internalCfg.Encoding = "console"
	internalCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	internalCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv(constants.EnvDebug) != "" || mode == "debug" {
		internalCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		internalCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	l, err := internalCfg.Build()
	if err != nil {
		log.Printf("Failed to initialize zap logger: %v, falling back to standard logger", err)
		internalLogger = nil
		return
	}
	internalLogger = l.Sugar().With("service", constants.ServiceName)
}

func current() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return internalLogger
}

// User prints plain output for CLI users, without levels or timestamps.
func User(format string, v ...any) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if userLogger != nil {
		userLogger.Printf(format, v...)
	}
}

func Info(format string, v ...any) {
	if l := current(); l != nil {
		l.Infof(format, v...)
	}
}

func Warn(format string, v ...any) {
	if l := current(); l != nil {
		l.Warnf(format, v...)
	}
}

func Error(format string, v ...any) {
	if l := current(); l != nil {
		l.Errorf(format, v...)
	}
}

func Debug(format string, v ...any) {
	if l := current(); l != nil {
		l.Debugf(format, v...)
	}
}

func SetUserOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	userWriter = w
	userLogger = log.New(userWriter, "", 0)
}

// SetInternalOutput redirects internal logs to w at debug level. Used by tests.
func SetInternalOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	loggerMu.Lock()
	defer loggerMu.Unlock()
	internalLogger = zap.New(core).Sugar()
}

// SetMode switches between "production" and "debug" logging.
func SetMode(mode string) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	loggerMode = mode
	initLoggers(mode)
}

// Sync flushes buffered log entries.
func Sync() {
	if l := current(); l != nil {
		_ = l.Sync()
	}
}

// Errorf logs the error message and returns it as an error value.
func Errorf(format string, v ...any) error {
	err := fmt.Errorf(format, v...)
	if l := current(); l != nil {
		l.Errorf("%s", err)
	}
	return err
}

// WithRequestID returns a new context with the given request ID.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// RequestIDFromContext extracts the request ID from context, if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(requestIDKey)
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}

func withRequestID(ctx context.Context, fields []any) []any {
	if reqID, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", reqID)
	}
	return fields
}

// InfoCtx logs an info message with context, including request ID if present.
func InfoCtx(ctx context.Context, msg string, fields ...any) {
	if l := current(); l != nil {
		l.Infow(msg, withRequestID(ctx, fields)...)
	}
}

// WarnCtx logs a warning message with context, including request ID if present.
func WarnCtx(ctx context.Context, msg string, fields ...any) {
	if l := current(); l != nil {
		l.Warnw(msg, withRequestID(ctx, fields)...)
	}
}

// ErrorCtx logs an error message with context, including request ID if present.
func ErrorCtx(ctx context.Context, msg string, fields ...any) {
	if l := current(); l != nil {
		l.Errorw(msg, withRequestID(ctx, fields)...)
	}
}

// DebugCtx logs a debug message with context, including request ID if present.
func DebugCtx(ctx context.Context, msg string, fields ...any) {
	if l := current(); l != nil {
		l.Debugw(msg, withRequestID(ctx, fields)...)
	}
}
