package database

import (
	"ClinicQueue/models"
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance.
var DB *gorm.DB

// InitDB initializes the database connection and configures it.
func InitDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	var err error

	// Configure logging level based on environment
	logMode := logger.Silent
	if os.Getenv("ENV") == "development" {
		logMode = logger.Info
	}

	// Open the database connection
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: false,
		PrepareStmt:                              true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	// Configure connection pool
	if err := configureConnectionPool(); err != nil {
		return nil, err
	}

	// Test the database connection
	if err := testDatabaseConnection(ctx); err != nil {
		return nil, err
	}

	// Run migrations
	if err := runMigrations(); err != nil {
		return nil, err
	}

	// Seed initial data
	if err := seedInitialData(); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully.")
	return DB, nil
}

// configureConnectionPool sets up the connection pool settings for the database.
func configureConnectionPool() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// testDatabaseConnection verifies that the database connection is functional.
func testDatabaseConnection(ctx context.Context) error {
	sqlDB, err := DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// runMigrations performs database schema migrations.
func runMigrations() error {
	if err := DB.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Staff{},
		&models.Patient{},
		&models.Appointment{},
		&models.Visit{},
		&models.Prescription{},
		&models.Conversation{},
		&models.Message{},
		&models.ClinicSetting{},
	); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	return createPartialIndexes()
}

// createPartialIndexes installs the two uniqueness constraints the booking
// rules rely on: a slot may hold at most one non-terminal appointment, and
// at most one appointment system-wide may be in consultation.
func createPartialIndexes() error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointment_active_slot
		 ON appointment (scheduled_time)
		 WHERE status IN ('booked', 'arrived', 'in-consultation')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointment_single_consultation
		 ON appointment ((status))
		 WHERE status = 'in-consultation'`,
	}
	for _, stmt := range statements {
		if err := DB.Exec(stmt).Error; err != nil {
			return errors.Wrap(err, "failed to create partial index")
		}
	}
	return nil
}

// seedInitialData populates the database with initial data.
func seedInitialData() error {
	if err := models.SeedRoles(DB); err != nil {
		return errors.Wrap(err, "failed to seed roles")
	}
	if err := models.SeedPermissions(DB); err != nil {
		return errors.Wrap(err, "failed to seed permissions")
	}
	if err := models.SeedRolePermissions(DB); err != nil {
		return errors.Wrap(err, "failed to seed role permissions")
	}
	return seedClinicSettings()
}

// seedClinicSettings inserts the default settings documents if absent.
func seedClinicSettings() error {
	defaults := map[string]interface{}{
		models.SettingKeyReminders: models.ReminderSettings{
			Enabled:         true,
			SMSEnabled:      true,
			WhatsAppEnabled: false,
			MinutesBefore:   60,
		},
		models.SettingKeyDeposit: models.DepositSettings{
			Enabled: false,
			Amount:  100,
		},
	}
	return DB.Transaction(func(tx *gorm.DB) error {
		for key, value := range defaults {
			payload, err := json.Marshal(value)
			if err != nil {
				return errors.Wrap(err, "failed to marshal default setting")
			}
			setting := models.ClinicSetting{
				ID:           key,
				SettingKey:   key,
				SettingValue: string(payload),
			}
			var existing models.ClinicSetting
			if err := tx.Where(models.ClinicSetting{SettingKey: key}).
				Attrs(setting).FirstOrCreate(&existing).Error; err != nil {
				return errors.Wrap(err, "failed to seed clinic setting")
			}
		}
		return nil
	})
}

// LoadEnvConfig retrieves configuration values from environment variables.
func LoadEnvConfig() (string, error) {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		return "", errors.New("missing DB_URL environment variable")
	}
	return dsn, nil
}
