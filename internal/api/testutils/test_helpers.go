package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/book-exchange-server/internal/api"
	"github.com/rongwang/book-exchange-server/internal/config"
	"github.com/rongwang/book-exchange-server/internal/repository"
	"github.com/rongwang/book-exchange-server/internal/service"
	"github.com/rongwang/book-exchange-server/internal/utils"
	"github.com/stretchr/testify/require"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository *repository.SQLRepository
	Service    service.Service
	DB         *sqlx.DB
}

// SetupTestContext creates a new test context with initialized dependencies.
// Each context gets its own in-memory SQLite database. With
// TEST_DB_DRIVER=postgres the configured TEST_DB_NAME is used instead.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	cfg := TestConfig(t)

	// Set up database
	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err, "Failed to set up test database")

	// Create repository
	repo := repository.NewSQLRepository(db)
	cleanupTestDatabase(t, db)

	// Create service
	svc := service.NewDefaultService(repo, nil, utils.Discard())

	// Create API handler
	handler := api.NewHandler(svc, utils.Discard())

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := api.NewRouter(handler, utils.Discard())

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		DB:         db,
	}
}

// SetupTestDB opens an empty test database that is closed with the test
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := config.SetupDatabase(TestConfig(t))
	require.NoError(t, err, "Failed to set up test database")
	cleanupTestDatabase(t, db)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestConfig returns the database configuration for a test
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("TEST_DB_DRIVER") == config.DriverPostgres {
		// Load configuration from environment
		cfg, err := config.LoadConfig()
		require.NoError(t, err, "Failed to load test configuration")
		cfg.Database.Driver = config.DriverPostgres
		if cfg.Database.TestDBName != "" {
			cfg.Database.DBName = cfg.Database.TestDBName
		} else {
			// Fallback to hardcoded test DB if not in environment
			cfg.Database.DBName = "bookexchange_test"
		}
		return cfg
	}

	return &config.Config{
		Env: "test",
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			Path:         fmt.Sprintf("%s?mode=memory&cache=shared", uuid.New().String()),
			MaxOpenConns: 1,
		},
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	// Clean up database
	if t.DB != nil {
		cleanupTestDatabase(nil, t.DB)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes all rows, children first
func cleanupTestDatabase(t *testing.T, db *sqlx.DB) {
	for _, table := range []string{"wishlist", "library_books", "libraries", "users", "addresses", "books"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil && t != nil {
			t.Logf("Warning: Failed to clean %s: %v", table, err)
		}
	}
}

// PerformRequest executes an HTTP request against the router. A string or
// []byte body is sent verbatim; anything else is JSON encoded.
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	case []byte:
		reqBody = bytes.NewBuffer(b)
	default:
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals the recorded response body into v
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

// ErrorMessage extracts ErrorMessage from an error response
func ErrorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		ErrorMessage string `json:"ErrorMessage"`
	}
	DecodeJSON(t, w, &resp)
	return resp.ErrorMessage
}
