package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray .env or
// config.yml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "bookexchange", cfg.Database.DBName)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_PATH", "/tmp/books.db")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/books.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: DriverPostgres, DBName: "bookexchange", MaxOpenConns: 5},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database.MaxOpenConns = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Cache.RedisURL = "localhost:6379"
	assert.Error(t, cfg.Validate())
	cfg.Cache.TTL = time.Minute
	assert.NoError(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	pg := DatabaseConfig{
		Driver: DriverPostgres, Host: "db", Port: 5432,
		Username: "u", Password: "p", DBName: "books", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=books sslmode=disable", pg.GetDSN())

	lite := DatabaseConfig{Driver: DriverSQLite, Path: "books.db"}
	assert.Equal(t, "file:books.db?_busy_timeout=5000&_foreign_keys=1", lite.GetDSN())

	mem := DatabaseConfig{Driver: DriverSQLite, Path: "t1?mode=memory&cache=shared"}
	assert.Equal(t, "file:t1?mode=memory&cache=shared&_busy_timeout=5000&_foreign_keys=1", mem.GetDSN())
}

func TestSetupDatabaseSQLite(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "books.db"),
	}}

	db, err := SetupDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	// Creating the schema twice is a no-op
	require.NoError(t, CreateTables(db))

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`))
	assert.Equal(t, []string{"addresses", "books", "libraries", "library_books", "users", "wishlist"}, tables)
}
