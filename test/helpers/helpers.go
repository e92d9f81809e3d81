// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/avashisht/boutique-be/internal/adapters/db"
	"github.com/avashisht/boutique-be/internal/core/domain"
	"github.com/avashisht/boutique-be/internal/pkg/config"
	"github.com/avashisht/boutique-be/internal/pkg/logger"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *logger.Logger {
	level := "error"
	if testing.Verbose() {
		level = "debug"
	}
	return logger.NewLogger(&logger.LogConfig{
		Level:  level,
		Format: "text",
		Output: "stdout",
	})
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_ledger",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_ledger",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	log := TestLogger()

	// Wait for the container to accept connections
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, log.Logger)
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, log.Logger, 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "test",
			Password:       "test",
			Name:           "test_ledger",
			SSLMode:        "disable",
			MaxConnections: 10,
			MinConnections: 2,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Security: config.SecurityConfig{
			BcryptCost:        4,
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
			RequestIDHeader:   "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Seed: config.SeedConfig{
			AdminUsername: "admin",
			AdminPassword: "admin-test",
		},
	}
}

// CreateTestItem creates a test inventory item
func CreateTestItem(overrides ...func(*domain.InventoryItem)) *domain.InventoryItem {
	item := &domain.InventoryItem{
		ItemName:      "Kurti-A",
		Category:      "Apparel",
		CurrentStock:  10,
		MinStockLevel: 5,
		UnitPrice:     decimal.NewFromInt(100),
		LastUpdated:   time.Now(),
		CreatedAt:     time.Now(),
	}
	item.RecomputeTotalValue()

	for _, override := range overrides {
		override(item)
		item.RecomputeTotalValue()
	}

	return item
}

// CreateTestItems creates multiple test inventory items
func CreateTestItems(count int) []domain.InventoryItem {
	categories := []string{"Apparel", "Accessories", "Footwear", "General"}

	items := make([]domain.InventoryItem, count)
	for i := 0; i < count; i++ {
		items[i] = *CreateTestItem(func(item *domain.InventoryItem) {
			item.ItemName = fmt.Sprintf("Item-%03d", i+1)
			item.Category = categories[i%len(categories)]
			item.CurrentStock = 5 + i
			item.UnitPrice = decimal.NewFromInt(int64(100 + i*50))
		})
	}

	return items
}

// CreateTestPurchase creates a valid purchase transaction
func CreateTestPurchase(overrides ...func(*domain.Transaction)) *domain.Transaction {
	tx := &domain.Transaction{
		Type: domain.TypePurchase,
		Date: time.Now(),
		Items: []domain.TransactionItem{
			{
				ItemName:  "Kurti-A",
				Quantity:  10,
				UnitPrice: decimal.NewFromInt(100),
				Category:  "Apparel",
			},
		},
		Supplier: &domain.Party{
			Name:  "Sharma Textiles",
			Phone: "9876500001",
		},
	}
	tx.RecomputeTotals()

	for _, override := range overrides {
		override(tx)
		tx.RecomputeTotals()
	}

	return tx
}

// CreateTestSale creates a valid sale transaction
func CreateTestSale(overrides ...func(*domain.Transaction)) *domain.Transaction {
	tx := &domain.Transaction{
		Type: domain.TypeSale,
		Date: time.Now(),
		Items: []domain.TransactionItem{
			{
				ItemName:  "Kurti-A",
				Quantity:  4,
				UnitPrice: decimal.NewFromInt(150),
				Category:  "Apparel",
			},
		},
		Customer: &domain.Party{
			Name: "Walk-in",
		},
	}
	tx.RecomputeTotals()

	for _, override := range overrides {
		override(tx)
		tx.RecomputeTotals()
	}

	return tx
}

// CompareItems compares two inventory items for testing
func CompareItems(t *testing.T, expected, actual *domain.InventoryItem) {
	t.Helper()

	require.Equal(t, expected.ItemName, actual.ItemName)
	require.Equal(t, expected.Category, actual.Category)
	require.Equal(t, expected.CurrentStock, actual.CurrentStock)
	require.Equal(t, expected.MinStockLevel, actual.MinStockLevel)
	require.True(t, expected.UnitPrice.Equal(actual.UnitPrice),
		"unit price mismatch: want %s got %s", expected.UnitPrice, actual.UnitPrice)
	require.True(t, expected.TotalValue.Equal(actual.TotalValue),
		"total value mismatch: want %s got %s", expected.TotalValue, actual.TotalValue)
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"transactions",
		"inventory",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}
