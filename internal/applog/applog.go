// Package applog configures the process-wide go-logging backend. Packages
// keep their own module logger via logging.MustGetLogger.
package applog

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

const format = `%{time:2006-01-02 15:04:05} %{level:.5s} %{module:-8s} %{message}`

// InitLogger parses the level name (DEBUG, INFO, WARNING, ERROR, ...) and
// installs a leveled stdout backend. An unknown level is an error.
func InitLogger(level string) error {
	return InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer, level string) error {
	if strings.TrimSpace(level) == "" {
		level = "INFO"
	}
	lvl, err := logging.LogLevel(strings.ToUpper(level))
	if err != nil {
		return err
	}

	backend := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(format))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return nil
}
