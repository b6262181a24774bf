package database

import (
	"fmt"
	"log"

	"github.com/sagarpathak0/pharma-res/internal/config"
	"github.com/sagarpathak0/pharma-res/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the gorm connection pool for the configured driver.
// The pool is constructed once at startup and injected into services;
// nothing imports it as a package singleton.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	log.Printf("Attempting database connection with DSN: %s", maskPassword(cfg.Database.DSN))

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		dialector = postgres.Open(cfg.Database.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func maskPassword(dsn string) string {
	if len(dsn) > 20 {
		return dsn[:20] + "...***..."
	}
	return "***"
}

func Migrate(db *gorm.DB) error {
	log.Println("Running migrations...")

	err := db.AutoMigrate(
		&models.Student{},
		&models.Subject{},
		&models.Exam{},
		&models.Mark{},
		&models.GradingPolicy{},
	)
	if err != nil {
		return err
	}

	// Add performance indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_marks_roll ON marks(roll_number)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_marks_exam ON marks(exam_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_exams_type ON exams(exam_type)")

	return nil
}
