package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool
	DBSystem         string        // "postgresql" or "sqlite"
	SlowQueryThresh  time.Duration // queries slower than this get a slow_query event
	WithoutVariables bool          // strip bound values from db.statement
}

// DefaultDBTracingConfig returns tracing disabled with variables stripped.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		DBSystem:         "postgresql",
		SlowQueryThresh:  200 * time.Millisecond,
		WithoutVariables: true,
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus slow query annotation on db.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if cfg.WithoutVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateQuery(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("bizportal_timing:before_create", before),
		cb.Query().Before("gorm:query").Register("bizportal_timing:before_query", before),
		cb.Update().Before("gorm:update").Register("bizportal_timing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("bizportal_timing:before_delete", before),
		cb.Row().Before("gorm:row").Register("bizportal_timing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("bizportal_timing:before_raw", before),
		cb.Create().After("gorm:create").Register("bizportal_timing:after_create", after),
		cb.Query().After("gorm:query").Register("bizportal_timing:after_query", after),
		cb.Update().After("gorm:update").Register("bizportal_timing:after_update", after),
		cb.Delete().After("gorm:delete").Register("bizportal_timing:after_delete", after),
		cb.Row().After("gorm:row").Register("bizportal_timing:after_row", after),
		cb.Raw().After("gorm:raw").Register("bizportal_timing:after_raw", after),
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to register query timing callbacks: %w", err)
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateQuery(tx *gorm.DB, threshold time.Duration) {
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
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || threshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", threshold.Milliseconds()),
		))
	}
}
