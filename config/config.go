package config

import "time"

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"aster-ingest"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// PostgreSQL
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"aster"`
	DatabaseSSLMode               string        `env:"DB_SSL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// National phone format (defaults: Singapore)
	PhoneCountryCode   string `env:"PHONE_COUNTRY_CODE" env-default:"65"`
	PhoneLocalLength   int    `env:"PHONE_LOCAL_LENGTH" env-default:"8" validate:"min=1,max=15"`
	PhoneLeadingDigits string `env:"PHONE_LEADING_DIGITS" env-default:"6,8,9"`

	// Structure detection and column role inference
	DetectHeaderScanRows    int     `env:"DETECT_HEADER_SCAN_ROWS" env-default:"10" validate:"min=1"`
	InferenceSampleRows     int     `env:"INFERENCE_SAMPLE_ROWS" env-default:"10" validate:"min=1"`
	InferencePhoneThreshold float64 `env:"INFERENCE_PHONE_THRESHOLD" env-default:"0.5" validate:"gt=0,lt=1"`
	InferenceMinIDSamples   int     `env:"INFERENCE_MIN_ID_SAMPLES" env-default:"3" validate:"min=2"`
	RoleCacheSize           int     `env:"ROLE_CACHE_SIZE" env-default:"128" validate:"min=1"`

	// Synchronization
	StoreRetryCount int `env:"STORE_RETRY_COUNT" env-default:"3" validate:"min=0,max=10"`
}
