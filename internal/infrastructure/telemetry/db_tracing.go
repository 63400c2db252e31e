package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/school/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that tag slow
// queries and failed statements on the active span.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(db.Dialector.Name())}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThreshold
	}
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, thresh) }

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("school:trace_before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("school:trace_after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("school:trace_before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("school:trace_after_query", after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("school:trace_before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("school:trace_after_update", after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("school:trace_before_row", before); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("school:trace_after_row", after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("school:trace_before_raw", before); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("school:trace_after_raw", after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", thresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
