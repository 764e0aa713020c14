package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineRecorder records each Write call separately.
type lineRecorder struct {
	writes []string
}

func (r *lineRecorder) Write(p []byte) (int, error) {
	r.writes = append(r.writes, string(p))
	return len(p), nil
}

func TestDeferredWriter_FlushPerLine(t *testing.T) {
	var d DeferredWriter
	_, _ = d.Write([]byte("one\ntwo\n"))
	_, _ = d.Write([]byte("\nthree\n"))

	rec := &lineRecorder{}
	require.NoError(t, d.Flush(rec))

	assert.Equal(t, []string{"one\n", "two\n", "three\n"}, rec.writes)
	assert.Zero(t, d.Len())
}

func TestDeferredWriter_ZerologConsole(t *testing.T) {
	var d DeferredWriter
	logger := zerolog.New(&d)
	logger.Warn().Str("key", "calorieCamHistory").Msg("history could not be saved")

	var out bytes.Buffer
	require.NoError(t, d.Flush(zerolog.ConsoleWriter{Out: &out, NoColor: true}))

	assert.Contains(t, out.String(), "history could not be saved")
	assert.Contains(t, out.String(), "key=calorieCamHistory")
}
