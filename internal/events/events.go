// Package events records pipeline stage transitions for later audit.
// Emission is best effort: a sink failure is logged and swallowed so
// telemetry can never abort a paid run.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/pkg/supabase"
)

// Event is one pipeline occurrence.
type Event struct {
	RunID      string         `json:"run_id"`
	Stage      string         `json:"stage"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Levels for Event.Level.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Sink receives pipeline events.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// LogSink writes events to the process log. It is the fallback when no
// remote sink is configured.
type LogSink struct{}

// NewLogSink returns a Sink backed by the global logger.
func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Emit(_ context.Context, ev Event) {
	fields := []zap.Field{
		zap.String("run_id", ev.RunID),
		zap.String("stage", ev.Stage),
	}
	if ev.Payload != nil {
		fields = append(fields, zap.Any("payload", ev.Payload))
	}

	log := zap.L().With(fields...)
	switch ev.Level {
	case LevelError:
		log.Error(ev.Message)
	case LevelWarn:
		log.Warn(ev.Message)
	default:
		log.Info(ev.Message)
	}
}

// SupabaseSink persists events to a Supabase table.
type SupabaseSink struct {
	client supabase.Client
	table  string
}

// NewSupabaseSink creates a sink writing to the given table.
func NewSupabaseSink(client supabase.Client, table string) *SupabaseSink {
	if table == "" {
		table = "pipeline_events"
	}
	return &SupabaseSink{client: client, table: table}
}

func (s *SupabaseSink) Emit(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	if err := s.client.Insert(ctx, s.table, ev); err != nil {
		zap.L().Warn("event emission failed",
			zap.String("stage", ev.Stage),
			zap.Error(err))
	}
}
