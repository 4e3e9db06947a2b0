// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"qrispay-ledger/pkg/db"

	"github.com/shopspring/decimal"
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort    string
	StorageDriver string
	DB            db.Config
	FeePercentage decimal.Decimal // Admin fee percentage applied to withdrawals
	KafkaBrokers  []string        // Empty means events are discarded
	KafkaTopic    string
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	storageDriver := os.Getenv("STORAGE_DRIVER")
	if storageDriver == "" {
		// The reference deployment keeps all state locally; Postgres is opt-in.
		storageDriver = StorageDriverMemory
	}
	if storageDriver != StorageDriverMemory && storageDriver != StorageDriverPostgres {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", storageDriver)
	}

	feePercentageStr := os.Getenv("ADMIN_FEE_PERCENTAGE")
	if feePercentageStr == "" {
		feePercentageStr = "2.5"
	}
	feePercentage, err := decimal.NewFromString(feePercentageStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_FEE_PERCENTAGE: %w", err)
	}
	if feePercentage.IsNegative() {
		return nil, fmt.Errorf("ADMIN_FEE_PERCENTAGE must not be negative")
	}

	var kafkaBrokers []string
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaBrokers = strings.Split(brokers, ",")
	}
	kafkaTopic := os.Getenv("KAFKA_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "transaction_settled"
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "5432"
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "qrispaydb"
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	return &AppConfig{
		ServerPort:    serverPort,
		StorageDriver: storageDriver,
		FeePercentage: feePercentage,
		KafkaBrokers:  kafkaBrokers,
		KafkaTopic:    kafkaTopic,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
	}, nil
}
