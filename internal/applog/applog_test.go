package applog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/op/go-logging"
)

func TestInitLoggerTo_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitLoggerTo(&buf, "warning"); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = InitLogger("INFO") })

	log := logging.MustGetLogger("applog")
	log.Info("hidden")
	log.Warning("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInitLogger_UnknownLevel(t *testing.T) {
	if err := InitLoggerTo(&bytes.Buffer{}, "chatty"); err == nil {
		t.Fatalf("expected error")
	}
}
