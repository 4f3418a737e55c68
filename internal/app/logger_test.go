package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", AppEnv: "production"}, &buf)
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "v", entry["k"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerTextDebugOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "pretty"}, &buf)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
