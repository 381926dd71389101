package gelf

import (
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookSendsGELF(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	h, err := New(pc.LocalAddr().String(), "oxiforms")
	require.NoError(t, err)
	defer h.Close()

	logger := log.New()
	logger.AddHook(h)
	logger.WithFields(log.Fields{"form_id": "f1", "id": "x", "count": 2}).
		WithError(errors.New("boom")).Warn("submission failed")

	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 8192)
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(buf[:n], &msg))
	assert.Equal(t, "1.1", msg["version"])
	assert.Equal(t, "submission failed", msg["short_message"])
	assert.Equal(t, float64(4), msg["level"])
	assert.Equal(t, "oxiforms", msg["_service"])
	assert.Equal(t, "f1", msg["_form_id"])
	assert.Equal(t, "x", msg["_field_id"])
	assert.Equal(t, float64(2), msg["_count"])
	assert.Equal(t, "boom", msg["_error"])
}

func TestSyslogLevel(t *testing.T) {
	assert.Equal(t, 3, syslogLevel(log.ErrorLevel))
	assert.Equal(t, 6, syslogLevel(log.InfoLevel))
	assert.Equal(t, 7, syslogLevel(log.DebugLevel))
	assert.Equal(t, 7, syslogLevel(log.TraceLevel))
}
