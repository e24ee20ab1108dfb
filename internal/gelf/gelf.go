// Package gelf ships log entries to a Graylog input over UDP.
package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Keys the zap encoder feeding a Writer must use.
const (
	LevelKey   = "level"
	TimeKey    = "ts"
	MessageKey = "msg"
	StackKey   = "stacktrace"
)

// Writer sends one GELF 1.1 message per Write. Each write must hold exactly
// one JSON-encoded zap entry, which is what a zapcore ioCore produces.
type Writer struct {
	conn    net.Conn
	host    string
	service string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	host, _ := os.Hostname()
	if host == "" {
		host = service
	}
	return &Writer{conn: conn, host: host, service: service}, nil
}

// Write never fails the log call. Entries that cannot be converted or sent
// are dropped.
func (w *Writer) Write(p []byte) (int, error) {
	payload, err := Encode(w.host, w.service, p, time.Now())
	if err != nil {
		return len(p), nil
	}
	w.conn.Write(payload)
	return len(p), nil
}

func (w *Writer) Sync() error { return nil }

func (w *Writer) Close() error { return w.conn.Close() }

// syslog severities
var levels = map[string]int{
	"debug":  7,
	"info":   6,
	"warn":   4,
	"error":  3,
	"dpanic": 2,
	"panic":  2,
	"fatal":  2,
}

// Encode converts one zap JSON entry into a GELF message. Fields other than
// the well-known keys become underscore-prefixed additional fields.
func Encode(host, service string, entry []byte, now time.Time) ([]byte, error) {
	var fields map[string]any
	if err := json.Unmarshal(entry, &fields); err != nil {
		return nil, err
	}

	msg := map[string]any{
		"version":       "1.1",
		"host":          host,
		"short_message": "",
		"timestamp":     float64(now.UnixNano()) / 1e9,
		"level":         6,
		"_service":      service,
	}
	for k, v := range fields {
		switch k {
		case MessageKey:
			s, _ := v.(string)
			msg["short_message"] = strings.TrimSpace(s)
		case TimeKey:
			if ts, ok := v.(float64); ok {
				msg["timestamp"] = ts
			}
		case LevelKey:
			if s, ok := v.(string); ok {
				if lvl, ok := levels[strings.ToLower(s)]; ok {
					msg["level"] = lvl
				}
			}
		case StackKey:
			msg["full_message"] = v
		case "id":
			// _id is reserved by GELF.
			msg["_field_id"] = v
		default:
			msg["_"+k] = v
		}
	}
	if msg["short_message"] == "" {
		msg["short_message"] = "-"
	}
	return json.Marshal(msg)
}
