// Package spanstore persists finished spans in the relational span store so
// they can be queried after the process exits.
package spanstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/jt828/functrace/pkg/model"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/snowflake"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Store saves one batch of records atomically.
type Store interface {
	Store(ctx context.Context, records []*model.SpanRecord) error
}

// Exporter is an sdktrace.SpanExporter writing to a Store.
type Exporter struct {
	store   Store
	ids     snowflake.Snowflake
	log     observability.Logger
	stopped atomic.Bool
}

func NewExporter(store Store, ids snowflake.Snowflake, log observability.Logger) *Exporter {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Exporter{store: store, ids: ids, log: log}
}

func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if e.stopped.Load() || len(spans) == 0 {
		return nil
	}

	records := make([]*model.SpanRecord, 0, len(spans))
	for _, s := range spans {
		rec, err := e.toRecord(s)
		if err != nil {
			e.log.Warn("skipping span that cannot be stored",
				observability.String("span", s.Name()),
				observability.Err(err),
			)
			continue
		}
		records = append(records, rec)
	}

	if err := e.store.Store(ctx, records); err != nil {
		return err
	}
	e.log.Debug("spans stored", observability.Int("count", len(records)))
	return nil
}

func (e *Exporter) Shutdown(context.Context) error {
	e.stopped.Store(true)
	return nil
}

func (e *Exporter) toRecord(s sdktrace.ReadOnlySpan) (*model.SpanRecord, error) {
	attrs := make(map[string]string, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}

	sc := s.SpanContext()
	var parent string
	if s.Parent().IsValid() {
		parent = s.Parent().SpanID().String()
	}

	return &model.SpanRecord{
		Id:            e.ids.Generate(),
		TraceId:       sc.TraceID().String(),
		SpanId:        sc.SpanID().String(),
		ParentSpanId:  parent,
		Name:          s.Name(),
		StatusCode:    strings.ToUpper(s.Status().Code.String()),
		StatusMessage: s.Status().Description,
		Attributes:    string(encoded),
		StartedAt:     s.StartTime(),
		EndedAt:       s.EndTime(),
		DurationMs:    DurationMs(s.EndTime().Sub(s.StartTime())),
	}, nil
}
