package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Output: &buf})

	l.ForStore("tenant:abc").Info().Int("qty", 3).Msg("reserva")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "reserva", line["message"])
	assert.Equal(t, "tenant:abc", line["store"])
	assert.EqualValues(t, 3, line["qty"])
}

func TestNew_NivelFiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Output: &buf})

	l.Info().Msg("oculto")
	assert.Empty(t, buf.String())

	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
