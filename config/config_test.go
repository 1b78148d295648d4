package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFlagsDefaults(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, "0.0.0.0", cfg.Bind)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.MaxHierarchyDepth)
	assert.Equal(t, 20, cfg.MaxPathDepth)
	assert.Equal(t, 255, cfg.MaxNameLength)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestRegisterFlagsOverride(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--max-hierarchy-depth=5", "--port=9090"}))
	assert.Equal(t, 5, cfg.MaxHierarchyDepth)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLocationDefaultsToLocal(t *testing.T) {
	cfg := NewConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLocationNamed(t *testing.T) {
	cfg := NewConfig()
	cfg.Timezone = "UTC"
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
