package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIServer_MaxHeaderBytes(t *testing.T) {
	// net/http allows roughly 8KB on top of MaxHeaderBytes, so 4KB configured
	// accepts 2KB and rejects 20KB.
	api := NewAPIServer(http.NotFoundHandler(), nil, nil, ServerConfig{MaxHeaderBytes: 4 * 1024})
	require.Equal(t, 4*1024, api.server.MaxHeaderBytes)

	server := httptest.NewUnstartedServer(api.Handler())
	server.Config.MaxHeaderBytes = api.server.MaxHeaderBytes
	server.Start()
	defer server.Close()

	get := func(headerSize int) (*http.Response, error) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Padding", strings.Repeat("A", headerSize))
		return http.DefaultClient.Do(req)
	}

	t.Run("accepts headers within limit", func(t *testing.T) {
		resp, err := get(2 * 1024)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejects headers over limit", func(t *testing.T) {
		resp, err := get(20 * 1024)
		if err != nil {
			t.Logf("server rejected with connection error: %v", err)
			return
		}
		defer resp.Body.Close()
		assert.Equal(t, http.StatusRequestHeaderFieldsTooLarge, resp.StatusCode)
	})
}

func TestAPIServer_Address(t *testing.T) {
	api := NewAPIServer(http.NotFoundHandler(), nil, nil, ServerConfig{Host: "127.0.0.1", Port: "9999"})
	assert.Equal(t, "127.0.0.1:9999", api.server.Addr)
	assert.Equal(t, DefaultReadTimeout, api.server.ReadTimeout)

	api = NewAPIServer(http.NotFoundHandler(), nil, nil, ServerConfig{})
	assert.Equal(t, ":"+DefaultPort, api.server.Addr)
}

func TestAPIServer_WithoutDocsHasNoRootRedirect(t *testing.T) {
	api := NewAPIServer(http.NotFoundHandler(), nil, nil, ServerConfig{})

	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerConfig_ApplyDefaults(t *testing.T) {
	t.Run("applies all defaults for zero config", func(t *testing.T) {
		cfg := ServerConfig{}
		cfg.applyDefaults()

		assert.Equal(t, DefaultPort, cfg.Port)
		assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
		assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
		assert.Equal(t, DefaultIdleTimeout, cfg.IdleTimeout)
		assert.Equal(t, DefaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
		assert.Equal(t, DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
		assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
		assert.Zero(t, cfg.RateLimitRPS, "rate limiting stays off unless configured")
	})

	t.Run("preserves non-zero values", func(t *testing.T) {
		cfg := ServerConfig{
			Port:           "9000",
			MaxHeaderBytes: 2048,
			MaxBodyBytes:   4096,
			RateLimitRPS:   50,
			RateLimitBurst: 10,
		}
		cfg.applyDefaults()

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, 2048, cfg.MaxHeaderBytes)
		assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
		assert.Equal(t, 50.0, cfg.RateLimitRPS)
		assert.Equal(t, 10, cfg.RateLimitBurst)
		// Other fields should get defaults
		assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	})
}
