package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"civicsense/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies a missing config file falls back to defaults.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "store", cfg.RankingMode)
	assert.Equal(t, config.DefaultClusterRadiusKm, cfg.ClusterRadiusKm)
}

// TestLoad_YAMLFile verifies values come from the YAML file.
func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "listen_addr: \":9090\"\nranking_mode: \"heap\"\ncluster_radius_km: 2.5\ncluster_cron: \"0 3 * * *\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "heap", cfg.RankingMode)
	assert.Equal(t, 2.5, cfg.ClusterRadiusKm)
	assert.Equal(t, "0 3 * * *", cfg.ClusterCron)
}

// TestLoad_EnvOverride verifies environment variables win over the file.
func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_host: \"filehost\"\n"), 0o644))
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("JWT_SECRET", "supersecret")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.DBHost)
	assert.Equal(t, "supersecret", cfg.JWTSecret)
}

// TestDSN verifies the connection string layout.
func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n",
	}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=disable", cfg.DSN())
}

// TestLoad_BadYAML surfaces parse errors.
func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [unclosed\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
