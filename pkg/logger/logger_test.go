package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	return New(Config{Env: "production", Level: level, Service: "retail-ledger-api", Out: &buf}), &buf
}

func lastEvent(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &ev))
	return ev
}

func TestPosition_AddsStoreAndVariant(t *testing.T) {
	l, buf := newBuffered(t, "info")

	l.Position("s1", "v1").Warn().Msg("descuadre")

	ev := lastEvent(t, buf)
	assert.Equal(t, "retail-ledger-api", ev["service"])
	assert.Equal(t, "s1", ev["store_id"])
	assert.Equal(t, "v1", ev["variant_id"])
	assert.Equal(t, "warn", ev["level"])
}

func TestStore_EmptyKeepsLogger(t *testing.T) {
	l, buf := newBuffered(t, "info")

	assert.Same(t, l, l.Store(""))

	l.Store("s2").Document("invoice", "inv-1").Info().Msg("cobrado")
	ev := lastEvent(t, buf)
	assert.Equal(t, "s2", ev["store_id"])
	assert.Equal(t, "invoice", ev["doc_type"])
	assert.Equal(t, "inv-1", ev["doc_id"])
}

func TestLevel_FiltersAndDefaults(t *testing.T) {
	l, buf := newBuffered(t, "warn")
	l.Info().Msg("oculto")
	assert.Zero(t, buf.Len())

	l, buf = newBuffered(t, "no-existe")
	l.Debug().Msg("oculto")
	l.Info().Msg("visible")
	assert.Equal(t, "visible", lastEvent(t, buf)["message"])
}
