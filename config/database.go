package config

import (
	"Huddle/logger"
	"Huddle/models"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDatabase connects and migrates. TranslateError lets repositories see
// unique violations as gorm.ErrDuplicatedKey.
func OpenDatabase(cfg Database) (*gorm.DB, error) {
	logger.Info("connecting to database",
		"host", cfg.Host, "user", cfg.User, "dbname", cfg.Name, "port", cfg.Port, "sslmode", cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "config.OpenDatabase")
	}

	if err := db.AutoMigrate(models.Tables()...); err != nil {
		return nil, errors.Wrap(err, "config.OpenDatabase: migrate")
	}

	logger.Info("database ready")
	return db, nil
}
