package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Host    string        `env:"TEST_HOST" default:"localhost"`
	Port    int           `env:"TEST_PORT" default:"8080"`
	Enabled bool          `env:"TEST_ENABLED" default:"true"`
	Rate    float64       `env:"TEST_RATE"`
	Timeout time.Duration `env:"TEST_TIMEOUT" default:"5s"`
	NoDef   string        `env:"TEST_NO_DEF"`
	Ignored string
}

type validatedSection struct {
	Size int `env:"TEST_SIZE" default:"3"`
}

var errTooBig = errors.New("size too big")

func (s *validatedSection) Validate() error {
	if s.Size > 10 {
		return errTooBig
	}
	return nil
}

type rootConfig struct {
	Section validatedSection
	Name    string `env:"TEST_NAME" default:"root"`
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_HOST", "example.com")
	t.Setenv("TEST_PORT", "9090")
	t.Setenv("TEST_ENABLED", "false")
	t.Setenv("TEST_RATE", "2.5")
	t.Setenv("TEST_TIMEOUT", "1m30s")
	t.Setenv("TEST_NO_DEF", "foo")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.Enabled)
	assert.InDelta(t, 2.5, cfg.Rate, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "foo", cfg.NoDef)
	assert.Empty(t, cfg.Ignored)
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Zero(t, cfg.Rate)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.NoDef)
}

func TestLoad_EmptyStringRespected(t *testing.T) {
	t.Setenv("TEST_HOST", "")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"empty int", "TEST_PORT", ""},
		{"non numeric int", "TEST_PORT", "http"},
		{"bad bool", "TEST_ENABLED", "maybe"},
		{"bad float", "TEST_RATE", "fast"},
		{"bad duration", "TEST_TIMEOUT", "5 seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			var cfg testConfig
			err := Load(&cfg)
			require.Error(t, err)

			var invalid ErrInvalidValue
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.envVar, invalid.EnvVar)
			assert.Equal(t, tt.value, invalid.Value)
			assert.NotNil(t, errors.Unwrap(invalid))
		})
	}
}

func TestLoad_NestedValidation(t *testing.T) {
	var cfg rootConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 3, cfg.Section.Size)
	assert.Equal(t, "root", cfg.Name)

	t.Setenv("TEST_SIZE", "11")
	err := Load(&cfg)
	assert.ErrorIs(t, err, errTooBig)
}

func TestLoad_EmbeddedStruct(t *testing.T) {
	type BaseConfig struct {
		StorageDSN    string `env:"STORAGE_DSN"`
		StorageDriver string `env:"STORAGE_DRIVER" default:"postgres"`
	}
	type AppConfig struct {
		BaseConfig
		AppName string `env:"APP_NAME" default:"myapp"`
	}

	t.Setenv("STORAGE_DSN", "postgres://localhost/db")

	var cfg AppConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "postgres://localhost/db", cfg.StorageDSN)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, "myapp", cfg.AppName)
}

func TestLoad_RejectsNonStructPointer(t *testing.T) {
	var cfg testConfig

	err := Load(cfg)
	var notPtr ErrNotStructPointer
	require.ErrorAs(t, err, &notPtr)
	assert.Contains(t, notPtr.Error(), "env.Load")

	n := 3
	assert.Error(t, Load(&n))
}

func TestLoad_UnsupportedType(t *testing.T) {
	type withSlice struct {
		Hosts []string `env:"TEST_HOSTS" default:"a,b"`
	}

	var cfg withSlice
	err := Load(&cfg)

	var unsupported ErrUnsupportedType
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "slice", unsupported.Kind)
}
