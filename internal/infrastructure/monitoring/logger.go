package monitoring

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/turtacn/obsdemo/internal/config"
	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/logger"
)

type zapLogger struct {
	*zap.Logger
	closers []io.Closer
}

// NewZapLogger builds the service logger: a console sink on stdout and a
// size-rotated file sink, either of which may be disabled by cfg.
func NewZapLogger(cfg *config.LogConfig) (logger.Logger, error) {
	return newZapLogger(cfg, zapcore.Lock(os.Stdout))
}

// NewRotatingFile returns the rotating writer used for the file sink.
// Rotation happens when a write would grow the file past MaxSizeMB; at most
// MaxBackups archived files are kept, oldest removed first.
func NewRotatingFile(cfg *config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

func newZapLogger(cfg *config.LogConfig, console zapcore.WriteSyncer) (*zapLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	enabler := zap.NewAtomicLevelAt(level)
	encoder := newEncoder(cfg.Format)

	var (
		cores   []zapcore.Core
		closers []io.Closer
	)
	if cfg.Console && console != nil {
		cores = append(cores, zapcore.NewCore(encoder, console, enabler))
	}
	if cfg.FilePath != "" {
		file := NewRotatingFile(cfg)
		// lumberjack serialises writes internally; each entry is a single Write.
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(file), enabler))
		closers = append(closers, file)
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Format == constants.LogFormatJSON {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	name := cfg.Name
	if name == "" {
		name = constants.ServiceName
	}
	return &zapLogger{
		Logger:  zap.New(zapcore.NewTee(cores...), opts...).Named(name),
		closers: closers,
	}, nil
}

func newEncoder(format string) zapcore.Encoder {
	if format == constants.LogFormatJSON {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.MessageKey = "message"
		encoderConfig.NameKey = "logger"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	// timestamp - LEVEL - logger - message - {fields}
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "message",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " - ",
	})
}

// NewLoggerFromCore wraps an arbitrary zap core, e.g. an observer in tests.
func NewLoggerFromCore(core zapcore.Core) logger.Logger {
	return &zapLogger{Logger: zap.New(core)}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Debug(msg, l.convertFields(ctx, fields...)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Info(msg, l.convertFields(ctx, fields...)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Warn(msg, l.convertFields(ctx, fields...)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	zapFields := l.convertFields(ctx, fields...)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.Logger.Error(msg, zapFields...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	zapFields := l.convertFields(ctx, fields...)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.Logger.Fatal(msg, zapFields...)
}

func (l *zapLogger) WithFields(fields logger.Fields) logger.Logger {
	return &zapLogger{
		Logger:  l.Logger.With(l.convertFields(context.Background(), fields)...),
		closers: l.closers,
	}
}

func (l *zapLogger) ForContext(ctx context.Context) logger.Logger {
	if ctxLogger, ok := ctx.Value(constants.ContextKeyLogger).(logger.Logger); ok {
		return ctxLogger
	}
	return l
}

// Sync flushes the cores. Errors from syncing a terminal stdout are ignored.
func (l *zapLogger) Sync() error {
	_ = l.Logger.Sync()
	return nil
}

// Close flushes and releases the rotating file.
func (l *zapLogger) Close() error {
	_ = l.Sync()
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *zapLogger) convertFields(ctx context.Context, fields ...logger.Fields) []zap.Field {
	zapFields := make([]zap.Field, 0)
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			zapFields = append(zapFields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
			zapFields = append(zapFields, zap.String("request_id", requestID))
		}
	}

	for k, v := range logger.Merge(fields...) {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
