// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/parisxmas/oxiforms/internal/gelf"
)

type Options struct {
	Level   string
	Format  string
	File    string
	GELF    string
	Service string
}

// Setup applies opts to the standard logrus logger. The returned func
// releases the file and GELF handles.
func Setup(opts Options) func() {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	}

	var closers []func()
	out := io.Writer(os.Stdout)
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closers = append(closers, func() { _ = rotator.Close() })
	}
	log.SetOutput(out)

	if opts.GELF != "" {
		service := opts.Service
		if service == "" {
			service = "oxiforms"
		}
		hook, err := gelf.New(opts.GELF, service)
		if err != nil {
			log.WithError(err).WithField("addr", opts.GELF).Warn("GELF logging disabled")
		} else {
			log.AddHook(hook)
			closers = append(closers, func() { _ = hook.Close() })
			log.WithField("addr", opts.GELF).Info("GELF logging enabled")
		}
	}

	return func() {
		for _, c := range closers {
			c()
		}
	}
}
