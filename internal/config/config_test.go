package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak into tests
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ACCESS_TOKEN_SECRET", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASS",
		"DB_NAME", "MONGODB_URI", "CORS_ORIGINS", "APP_ENV", "RABBITMQ_USER", "RABBITMQ_PASS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				// Verify some key fields are populated
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, DriverPostgres, cfg.Database.Driver)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "solosphere", cfg.Database.Database)
				assert.True(t, cfg.Database.AutoMigrate)
				assert.Equal(t, "marketplace_events", cfg.RabbitMQ.Exchange.Name)
				assert.Equal(t, "marketplace_activity", cfg.RabbitMQ.Queue.Name)
				assert.Equal(t, 20, cfg.RabbitMQ.Consumer.PrefetchCount)
				assert.Equal(t, "solosphere-api", cfg.App.Name)
				assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
				assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORS.AllowedOrigins)
				assert.Equal(t, 15*time.Second, cfg.Worker.ProcessTimeout)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("testdata/minimal.yaml")
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, DefaultAllowedOrigins, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10, cfg.RabbitMQ.Consumer.PrefetchCount)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.False(t, cfg.App.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "5000")
	t.Setenv("ACCESS_TOKEN_SECRET", "from-env")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "s3cret")
	t.Setenv("DB_NAME", "market")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("APP_ENV", "production")
	t.Setenv("RABBITMQ_USER", "mq")
	t.Setenv("RABBITMQ_PASS", "mq-pass")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.TokenSecret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "app", cfg.Database.User)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "market", cfg.Database.Database)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "mq", cfg.RabbitMQ.User)
	assert.Equal(t, "mq-pass", cfg.RabbitMQ.Password)
}

func TestLoad_InvalidEnvPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	_, err := Load("testdata/minimal.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}

func validAPIConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 9000},
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			Database: "solosphere",
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "marketplace_events"},
			Queue:    QueueConfig{Name: "marketplace_activity"},
		},
		Auth: AuthConfig{TokenSecret: "secret", TokenTTL: time.Hour},
		Worker: WorkerConfig{
			Concurrency:     2,
			ProcessTimeout:  time.Second,
			ShutdownTimeout: time.Second,
		},
	}
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{
			name:   "memory driver needs no connection settings",
			mutate: func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMemory} },
		},
		{
			name:   "rabbitmq disabled skips its checks",
			mutate: func(c *Config) { c.RabbitMQ = RabbitMQConfig{} },
		},
		{
			name:      "port too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			errString: "invalid server port",
		},
		{
			name:      "port zero",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			errString: "invalid server port",
		},
		{
			name:      "missing token secret",
			mutate:    func(c *Config) { c.Auth.TokenSecret = "" },
			errString: "token_secret is required",
		},
		{
			name:      "unknown driver",
			mutate:    func(c *Config) { c.Database.Driver = "sqlite" },
			errString: "unknown database driver",
		},
		{
			name:      "missing database host",
			mutate:    func(c *Config) { c.Database.Host = "" },
			errString: "database host is required",
		},
		{
			name:      "invalid database port",
			mutate:    func(c *Config) { c.Database.Port = -1 },
			errString: "invalid database port",
		},
		{
			name:      "mongodb without uri",
			mutate:    func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMongoDB, Database: "solosphere"} },
			errString: "database uri is required",
		},
		{
			name:      "missing exchange name",
			mutate:    func(c *Config) { c.RabbitMQ.Exchange.Name = "" },
			errString: "rabbitmq exchange name is required",
		},
		{
			name:      "missing queue name",
			mutate:    func(c *Config) { c.RabbitMQ.Queue.Name = "" },
			errString: "rabbitmq queue name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAPIConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{
			name:      "mongodb is not supported",
			mutate:    func(c *Config) { c.Database.Driver = DriverMongoDB },
			errString: "worker requires the \"postgres\" database driver",
		},
		{
			name:      "rabbitmq disabled",
			mutate:    func(c *Config) { c.RabbitMQ.Enabled = false },
			errString: "worker requires rabbitmq to be enabled",
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Worker.Concurrency = 0 },
			errString: "worker concurrency must be greater than 0",
		},
		{
			name:      "zero process timeout",
			mutate:    func(c *Config) { c.Worker.ProcessTimeout = 0 },
			errString: "worker process_timeout must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAPIConfig()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestLoad_ValidateIntegration(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		errString string
	}{
		{name: "valid file", filePath: "testdata/valid_config.yaml"},
		{name: "minimal file", filePath: "testdata/minimal.yaml"},
		{name: "invalid port", filePath: "testdata/invalid_port.yaml", errString: "invalid server port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			cfg, err := Load(tt.filePath)
			require.NoError(t, err)

			err = cfg.ValidateAPIConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestClientConfigMapping(t *testing.T) {
	cfg := validAPIConfig()
	cfg.RabbitMQ.Consumer.PrefetchCount = 7
	cfg.RabbitMQ.Publish.BackoffMultiplier = 2
	cfg.Database.MaxOpenConns = 15

	mq := cfg.RabbitMQ.Client()
	assert.Equal(t, "marketplace_events", mq.ExchangeName)
	assert.Equal(t, "marketplace_activity", mq.QueueName)
	assert.Equal(t, 7, mq.PrefetchCount)
	assert.Equal(t, 2.0, mq.PublishBackoffMult)

	pg := cfg.Database.PostgreSQL()
	assert.Equal(t, "localhost", pg.Host)
	assert.Equal(t, 15, pg.MaxOpenConns)

	assert.Equal(t, uint64(15), cfg.Database.MongoDB().MaxPoolSize)
}

func TestPortConstants(t *testing.T) {
	assert.Equal(t, 1, MinPort)
	assert.Equal(t, 65535, MaxPort)
}
