// Package gelf ships logrus entries to a Graylog input over UDP.
package gelf

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Hook sends each entry as one GELF 1.1 message. Sends are fire-and-forget
// so a missing collector never blocks or fails a log call.
type Hook struct {
	conn     net.Conn
	hostname string
	service  string
	levels   []log.Level
}

// New creates a hook connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Hook, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service
	}
	return &Hook{conn: conn, hostname: hostname, service: service, levels: log.AllLevels}, nil
}

func (h *Hook) Levels() []log.Level { return h.levels }

func (h *Hook) Fire(e *log.Entry) error {
	payload, err := json.Marshal(h.message(e))
	if err != nil {
		return nil
	}
	_, _ = h.conn.Write(payload)
	return nil
}

func (h *Hook) Close() error { return h.conn.Close() }

func (h *Hook) message(e *log.Entry) map[string]any {
	msg := map[string]any{
		"version":       "1.1",
		"host":          h.hostname,
		"short_message": e.Message,
		"timestamp":     float64(e.Time.UnixNano()) / float64(time.Second),
		"level":         syslogLevel(e.Level),
		"_service":      h.service,
	}
	for k, v := range e.Data {
		if k == "id" {
			k = "field_id"
		}
		switch t := v.(type) {
		case error:
			msg["_"+k] = t.Error()
		case string, bool, int, int64, float64:
			msg["_"+k] = t
		default:
			msg["_"+k] = fmt.Sprint(t)
		}
	}
	return msg
}

func syslogLevel(l log.Level) int {
	switch l {
	case log.PanicLevel:
		return 0
	case log.FatalLevel:
		return 2
	case log.ErrorLevel:
		return 3
	case log.WarnLevel:
		return 4
	case log.InfoLevel:
		return 6
	}
	return 7
}
