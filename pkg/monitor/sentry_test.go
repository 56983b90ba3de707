package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/microblog/config"
)

func TestInitSentry_Disabled(t *testing.T) {
	flush, err := InitSentry(config.SentryConfig{}, "test")
	require.NoError(t, err)
	assert.NotPanics(t, flush)
}

func TestInitSentry_BadDSN(t *testing.T) {
	flush, err := InitSentry(config.SentryConfig{DSN: "::not a dsn"}, "test")
	assert.Error(t, err)
	assert.NotPanics(t, flush)
}

func TestInitSentry_ValidDSN(t *testing.T) {
	flush, err := InitSentry(config.SentryConfig{DSN: "https://public@127.0.0.1:1/1", Environment: "test"}, "v0")
	require.NoError(t, err)
	assert.NotNil(t, flush)
}
