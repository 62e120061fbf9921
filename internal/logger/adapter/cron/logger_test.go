package cron_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	robfig "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/biblia-online/biblia/internal/logger/adapter/cron"
)

var _ robfig.Logger = (*adapter.Logger)(nil)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	l := adapter.New(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Info("schedule", "entry", 1, "next", "tomorrow")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "schedule", line["message"])
	assert.InDelta(t, 1, line["entry"], 0)
	assert.Equal(t, "tomorrow", line["next"])

	buf.Reset()
	l.Error(errors.New("boom"), "panic", "odd")

	line = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["error"])
	assert.NotContains(t, line, "odd")
}
