package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"brandpulse/pkg/config"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/store"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "brand_analyzer_test"
	ConnectionTimeout   = 3 * time.Second
)

// NewConfig returns a configuration bound to a throwaway database, or skips
// t when MongoDB is not reachable.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	uri := getEnv("TEST_MONGO_URI", DefaultMongoURI)
	dbName := fmt.Sprintf("%s_%d", getEnv("TEST_DB_NAME", DefaultDatabaseName), time.Now().UnixNano())
	log := logger.Nop()

	s := store.New(store.Options{
		URI:                    uri,
		DatabaseName:           dbName,
		ConnectTimeout:         ConnectionTimeout,
		ServerSelectionTimeout: ConnectionTimeout,
		SocketTimeout:          10 * time.Second,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*ConnectionTimeout)
	defer cancel()

	db, err := s.Database(ctx)
	if err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", store.RedactURI(uri), err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("failed to drop test database %s: %v", dbName, err)
		}
		s.Close(ctx)
	})

	return &config.Config{
		MongoDatabaseName: dbName,
		MongoQueryTimeout: 5 * time.Second,
		Log:               log,
		Store:             s,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
