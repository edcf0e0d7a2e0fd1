package usecase

import (
	"io"
	"testing"
	"time"

	"imagulator/config"
	"imagulator/internal/domain/entity"
	"imagulator/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("database instance: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writes
	// the same way the production setup does.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.User{}, &entity.Patient{}, &entity.Image{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestJWTService() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 168 * time.Hour,
	})
}
