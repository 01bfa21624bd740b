package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// GormConfig controls statement tracing
type GormConfig struct {
	DBName string
	// WithVariables puts bound values in span attributes. Never in production.
	WithVariables bool
}

// InstrumentGorm records every GORM statement as a client span of the
// request that issued it
func InstrumentGorm(db *gorm.DB, cfg GormConfig) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return db.Use(otelgorm.NewPlugin(opts...))
}
