package util

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/localdb/lib/common"
	"github.com/ValentinKolb/localdb/lib/medium"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestGetStoreConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("medium", "memory")
	viper.Set("tenant", "app")
	viper.Set("log-level", "debug")
	viper.Set("verbose", true)

	conf, err := GetStoreConfig()
	require.NoError(t, err)
	assert.Equal(t, common.StoreConfig{
		Medium:   common.MediumMemory,
		Tenant:   "app",
		LogLevel: "debug",
		Verbose:  true,
	}, conf)

	viper.Set("medium", "redis")
	_, err = GetStoreConfig()
	assert.Error(t, err)

	viper.Set("medium", "memory")
	viper.Set("tenant", "a:b")
	_, err = GetStoreConfig()
	assert.Error(t, err)
}

func TestNewMedium(t *testing.T) {
	m, err := NewMedium(common.StoreConfig{Medium: common.MediumMemory})
	require.NoError(t, err)
	assert.Equal(t, medium.ImplMemory, m.Info().Type)
	require.NoError(t, m.Close())

	path := filepath.Join(t.TempDir(), "nested", "ldb.sqlite")
	m, err = NewMedium(common.StoreConfig{Medium: common.MediumSQLite, DataPath: path})
	require.NoError(t, err)
	assert.Equal(t, medium.ImplSQLite, m.Info().Type)
	assert.True(t, m.Info().Persistent)
	require.NoError(t, m.Close())

	_, err = NewMedium(common.StoreConfig{Medium: "redis"})
	assert.Error(t, err)
}
