package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func (dataEntity *SpanRecordDataEntity) ToDomain() SpanRecord {
	return SpanRecord(*dataEntity)
}

type SpanRecordDataEntity struct {
	Id            int64           `gorm:"column:id"`
	TraceId       string          `gorm:"column:trace_id"`
	SpanId        string          `gorm:"column:span_id"`
	ParentSpanId  string          `gorm:"column:parent_span_id"`
	Name          string          `gorm:"column:name"`
	StatusCode    string          `gorm:"column:status_code"`
	StatusMessage string          `gorm:"column:status_message"`
	Attributes    string          `gorm:"column:attributes"`
	StartedAt     time.Time       `gorm:"column:started_at"`
	EndedAt       time.Time       `gorm:"column:ended_at"`
	DurationMs    decimal.Decimal `gorm:"column:duration_ms"`
}

func (dataEntity *SpanRecordDataEntity) TableName() string {
	return "main.spans"
}

// SpanRecord is one finished span as persisted by the span store. Attributes
// holds the span attributes as a JSON object of strings.
type SpanRecord struct {
	Id            int64
	TraceId       string
	SpanId        string
	ParentSpanId  string
	Name          string
	StatusCode    string
	StatusMessage string
	Attributes    string
	StartedAt     time.Time
	EndedAt       time.Time
	DurationMs    decimal.Decimal
}
