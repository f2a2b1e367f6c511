package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	ct "todoservice/pkg/context"
)

const lokiPushPath = "/loki/api/v1/push"

// LokiLogger logs through otelzap and, when a Loki URL is configured,
// pushes a copy of each entry to Loki.
type LokiLogger struct {
	Logger      *otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLokiLogger(serviceName, lokiURL string, production bool) (*LokiLogger, error) {
	config := zap.NewProductionConfig()
	if !production {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return NewFromZap(zapLogger, serviceName, lokiURL), nil
}

// NewNopLogger discards everything. Used by tests and commands that do not serve.
func NewNopLogger() *LokiLogger {
	return NewFromZap(zap.NewNop(), "todos", "")
}

// NewFromZap wraps an existing zap logger; tests use it with an observer core.
func NewFromZap(zapLogger *zap.Logger, serviceName, lokiURL string) *LokiLogger {
	l := &LokiLogger{
		Logger:      otelzap.New(zapLogger, otelzap.WithMinLevel(zapcore.InfoLevel)),
		ServiceName: serviceName,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if lokiURL != "" {
		l.lokiURL = strings.TrimSuffix(lokiURL, "/") + lokiPushPath
	}

	return l
}

func (l *LokiLogger) Sync() error {
	return l.Logger.Sync()
}

func (l *LokiLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *LokiLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *LokiLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *LokiLogger) log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	fields = append(fields, zap.String("service", l.ServiceName))

	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.lokiURL == "" {
		return
	}

	entry := l.entry(ctx, level, msg, fields)
	go l.push(context.WithoutCancel(ctx), entry)
}

// entry renders one Loki stream value. Fields go through a zap map encoder
// so every field type keeps its JSON shape.
func (l *LokiLogger) entry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) lokiPush {
	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(encoder)
	}

	data := encoder.Fields
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	data["level"] = level.String()
	data["message"] = msg

	// request-scoped values never override explicit fields
	if current, ok := ct.FromContext(ctx); ok {
		for key, value := range current.All() {
			if _, set := data[key]; !set {
				data[key] = value
			}
		}
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		data["trace_id"] = span.SpanContext().TraceID().String()
		data["span_id"] = span.SpanContext().SpanID().String()
	}

	line, err := json.Marshal(data)
	if err != nil {
		line = []byte(strconv.Quote(msg))
	}

	return lokiPush{
		Streams: []lokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(time.Now().UnixNano(), 10), string(line)},
				},
			},
		},
	}
}

func (l *LokiLogger) push(ctx context.Context, entry lokiPush) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.Logger.Debug("loki push failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
}
