package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, BusAsync, cfg.EventBus.Mode)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)

	assert.Equal(t, 2, cfg.Admission.MaxPromoters)
	assert.Equal(t, 3, cfg.Admission.MaxCAMembers)
	assert.Equal(t, 5, cfg.Admission.MaxPropositions)
	assert.Equal(t, 24, cfg.Admission.DeadlineMonths)
	assert.Equal(t, int64(300000), cfg.Admission.ReferenceBase)

	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "06:00", cfg.Scheduler.OverdueDocumentsAt)
	loc, err := cfg.Scheduler.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ADMISSION_HTTP_PORT", "9191")
	t.Setenv("ADMISSION_ADMISSION_COMMAND_TIMEOUT", "5s")
	t.Setenv("ADMISSION_LOG_FORMAT", "json")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Admission.CommandTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admission.yaml")
	content := `
database:
  driver: postgres
  host: db.internal
redis:
  enabled: true
eventbus:
  mode: redis
admission:
  max_ca_members: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, BusRedis, cfg.EventBus.Mode)
	assert.Equal(t, 4, cfg.Admission.MaxCAMembers)
	assert.Equal(t, 2, cfg.Admission.MaxPromoters)
}

func TestLoad_EnvironmentBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admission.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 7000\n"), 0o600))
	t.Setenv("ADMISSION_HTTP_PORT", "7001")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.HTTP.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	cfg.App.Environment = EnvProduction
	cfg.EventBus.Mode = BusRedis
	cfg.Admission.MaxPropositions = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver memory is not allowed in production")
	assert.Contains(t, err.Error(), "eventbus.mode redis requires redis.enabled")
	assert.Contains(t, err.Error(), "admission.max_propositions must be positive")
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	cfg.Database.Driver = "sqlite"
	cfg.Log.Format = "xml"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `database.driver "sqlite"`)
	assert.Contains(t, err.Error(), `log.format "xml"`)
}

func TestValidate_Scheduler(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	cfg.Scheduler.OverdueDocumentsAt = "6am"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler.overdue_documents_at")

	cfg.Scheduler.Enabled = false
	assert.NoError(t, cfg.Validate())
}
