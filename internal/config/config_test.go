package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Output)
	assert.False(t, cfg.Debug)
	assert.Equal(t, BearerModeNone, cfg.GenerateBearerAuth)
	assert.Equal(t, "com.ymir.generated.dto", cfg.Target.Packages.DTO)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	raw := []byte(`{
		"output": "dist",
		"debug": true,
		"detailedErrors": true,
		"generateBearerAuth": "FULL",
		"target": { "useSpringSecurity": true },
		"frontend": { "mode": "vanilla", "output": "dist/web" }
	}`)
	cfg, err := Load(raw)
	require.NoError(t, err)
	assert.Equal(t, "dist", cfg.Output)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.DetailedErrors)
	assert.Equal(t, BearerModeFull, cfg.GenerateBearerAuth)
	assert.True(t, cfg.Target.UseSpringSecurity)
	require.NotNil(t, cfg.Frontend)
	assert.Equal(t, "dist/web", cfg.Frontend.Output)
	// target.packages was omitted, so it still falls back to the default.
	assert.Equal(t, "com.ymir.generated.dto", cfg.Target.Packages.DTO)
}

func TestLoad_MalformedJSONIsConfigError(t *testing.T) {
	_, err := Load([]byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConfigError")
}
