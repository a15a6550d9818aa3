package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the postgres pool. The otelgorm plugin is installed when
// tracing is on; failing to install it is logged and not fatal.
func ConnectDB(dsn string, tracing bool, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	if tracing {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			log.WithError(err).Warn("db connected but failed to install otelgorm plugin")
		}
	}
	return db, nil
}
