package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envFileEnv, filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	for _, key := range []string{
		portEnv, redisAddrEnv, redisDBEnv, dbDriverEnv, dbDSNEnv,
		sendTimeoutEnv, maxConcurrentSendsEnv, taskConcurrencyEnv, lockTTLEnv,
		renotifyEnv, manualPeriodTypesEnv, expoEndpointEnv,
	} {
		t.Setenv(key, "")
	}
	// Unset so the default cron spec applies.
	t.Setenv(cronSpecEnv, "")
	os.Unsetenv(cronSpecEnv)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != defaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, defaultPort)
	}
	if cfg.Redis.Addr != defaultRedisAddr || cfg.Redis.LockKey != defaultTickLockKey {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Database.Driver != DBDriverSQLite || cfg.Database.DSN != defaultDBDSN {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Dispatch.CronSpec != defaultCronSpec {
		t.Errorf("CronSpec = %q, want %q", cfg.Dispatch.CronSpec, defaultCronSpec)
	}
	if !cfg.Dispatch.RenotifyUntilCompleted {
		t.Error("RenotifyUntilCompleted should default to true")
	}
	if cfg.Dispatch.SendTimeout != defaultSendTimeout || cfg.Dispatch.LockTTL != defaultLockTTL {
		t.Errorf("Dispatch durations = %v / %v", cfg.Dispatch.SendTimeout, cfg.Dispatch.LockTTL)
	}
	if cfg.Notifier.ExpoEndpoint != defaultExpoEndpoint {
		t.Errorf("ExpoEndpoint = %q", cfg.Notifier.ExpoEndpoint)
	}
}

func TestLoadDispatchConfig_Overrides(t *testing.T) {
	t.Setenv(cronSpecEnv, "*/5 * * * *")
	t.Setenv(sendTimeoutEnv, "3s")
	t.Setenv(maxConcurrentSendsEnv, "4")
	t.Setenv(taskConcurrencyEnv, "2")
	t.Setenv(lockTTLEnv, "30s")
	t.Setenv(renotifyEnv, "false")
	t.Setenv(manualPeriodTypesEnv, "weekly, Yearly")

	cfg, err := LoadDispatchConfig()
	if err != nil {
		t.Fatalf("LoadDispatchConfig() error = %v", err)
	}

	if cfg.CronSpec != "*/5 * * * *" {
		t.Errorf("CronSpec = %q", cfg.CronSpec)
	}
	if cfg.SendTimeout != 3*time.Second || cfg.LockTTL != 30*time.Second {
		t.Errorf("durations = %v / %v", cfg.SendTimeout, cfg.LockTTL)
	}
	if cfg.MaxConcurrentSends != 4 || cfg.TaskConcurrency != 2 {
		t.Errorf("concurrency = %d / %d", cfg.MaxConcurrentSends, cfg.TaskConcurrency)
	}
	if cfg.RenotifyUntilCompleted {
		t.Error("RenotifyUntilCompleted = true, want false")
	}

	policy := cfg.AdvancePolicy()
	if policy.Advances(domain.PeriodWeekly) || policy.Advances(domain.PeriodYearly) {
		t.Error("manual period types should not advance")
	}
	if !policy.Advances(domain.PeriodDaily) {
		t.Error("daily should advance")
	}
}

func TestLoadDispatchConfig_EmptyCronDisables(t *testing.T) {
	t.Setenv(cronSpecEnv, "")

	cfg, err := LoadDispatchConfig()
	if err != nil {
		t.Fatalf("LoadDispatchConfig() error = %v", err)
	}
	if cfg.CronSpec != "" {
		t.Errorf("CronSpec = %q, want empty", cfg.CronSpec)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadDispatchConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"bad duration", sendTimeoutEnv, "ten", nil},
		{"bad int", maxConcurrentSendsEnv, "many", nil},
		{"bad bool", renotifyEnv, "sometimes", nil},
		{"unknown period type", manualPeriodTypesEnv, "Daily,Hourly", ErrInvalidManualPeriodType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadDispatchConfig()
			if err == nil {
				t.Fatal("LoadDispatchConfig() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			var envErr *EnvError
			if tt.want == nil && !errors.As(err, &envErr) {
				t.Errorf("error = %v, want *EnvError", err)
			}
		})
	}
}

func TestDispatchConfig_Validate(t *testing.T) {
	valid := DispatchConfig{
		CronSpec:           "* * * * *",
		SendTimeout:        time.Second,
		MaxConcurrentSends: 1,
		TaskConcurrency:    1,
		LockTTL:            time.Second,
	}

	tests := []struct {
		name   string
		mutate func(c *DispatchConfig)
		want   error
	}{
		{"valid", func(c *DispatchConfig) {}, nil},
		{"bad cron", func(c *DispatchConfig) { c.CronSpec = "every minute" }, ErrInvalidCronSpec},
		{"zero sends", func(c *DispatchConfig) { c.MaxConcurrentSends = 0 }, ErrNonPositiveConcurrency},
		{"zero ttl", func(c *DispatchConfig) { c.LockTTL = 0 }, ErrNonPositiveDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)

			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDatabaseConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want error
	}{
		{"sqlite", DatabaseConfig{Driver: DBDriverSQLite, DSN: "x.db"}, nil},
		{"postgres", DatabaseConfig{Driver: DBDriverPostgres, DSN: "postgres://localhost/db"}, nil},
		{"unknown driver", DatabaseConfig{Driver: "mysql", DSN: "x"}, ErrUnsupportedDBDriver},
		{"missing dsn", DatabaseConfig{Driver: DBDriverPostgres}, ErrDBDSNMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv(redisAddrEnv, "redis:6380")
	t.Setenv(redisDBEnv, "2")
	t.Setenv(redisTLSEnv, "true")
	t.Setenv(tickLockKeyEnv, "custom:lock")

	cfg, err := LoadRedisConfig()
	if err != nil {
		t.Fatalf("LoadRedisConfig() error = %v", err)
	}

	opts := cfg.ClientOptions()
	if opts.Addr != "redis:6380" || opts.DB != 2 || opts.TLSConfig == nil {
		t.Errorf("ClientOptions() = %+v", opts)
	}
	if cfg.LockKey != "custom:lock" {
		t.Errorf("LockKey = %q", cfg.LockKey)
	}

	t.Setenv(redisDBEnv, "one")
	if _, err := LoadRedisConfig(); !errors.Is(err, ErrInvalidRedisDB) {
		t.Errorf("LoadRedisConfig() error = %v, want %v", err, ErrInvalidRedisDB)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DISPATCHER_TEST_ENV_FILE_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(envFileEnv, path)
	t.Cleanup(func() { os.Unsetenv("DISPATCHER_TEST_ENV_FILE_KEY") })

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := os.Getenv("DISPATCHER_TEST_ENV_FILE_KEY"); got != "from-file" {
		t.Errorf("env from file = %q, want from-file", got)
	}
}
