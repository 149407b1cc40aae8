package common

import (
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediumType(t *testing.T) {
	m, err := ParseMediumType(" SQLite ")
	require.NoError(t, err)
	assert.Equal(t, MediumSQLite, m)

	m, err = ParseMediumType("memory")
	require.NoError(t, err)
	assert.Equal(t, MediumMemory, m)

	_, err = ParseMediumType("redis")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"":        logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, want := range cases {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestStoreConfigValidate(t *testing.T) {
	conf := DefaultStoreConfig()
	assert.NoError(t, conf.Validate())

	conf.DataPath = ""
	assert.Error(t, conf.Validate(), "sqlite needs a data path")

	conf.Medium = MediumMemory
	assert.NoError(t, conf.Validate(), "memory ignores the data path")

	conf.Tenant = "a:b"
	assert.Error(t, conf.Validate())

	conf.Tenant = "app"
	conf.LogLevel = "loud"
	assert.Error(t, conf.Validate())
}

func TestStoreConfigString(t *testing.T) {
	conf := DefaultStoreConfig()
	conf.Tenant = "app-1"

	s := conf.String()
	assert.Contains(t, s, "STORAGE")
	assert.Contains(t, s, "sqlite")
	assert.Contains(t, s, "data/localdb.sqlite")
	assert.Contains(t, s, "app-1")

	conf.Medium = MediumMemory
	conf.Tenant = ""
	s = conf.String()
	assert.NotContains(t, s, "Data Path")
	assert.Contains(t, s, "(persisted)")
}
