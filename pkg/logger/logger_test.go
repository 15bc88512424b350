package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(INFO)
	defer SetLevel(INFO)

	DebugC("test", "hidden")
	InfoC("test", "shown")

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Error("debug line written at INFO level")
	}
	if !strings.Contains(got, "shown") {
		t.Error("info line missing")
	}
}

func TestComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(DEBUG)
	defer SetLevel(INFO)

	InfoCF("workflow", "store finished", map[string]any{
		"client": "acme",
		"file":   "report.pdf",
	})

	got := buf.String()
	for _, want := range []string{"[workflow]", "store finished", "client=acme", "file=report.pdf"} {
		if !strings.Contains(got, want) {
			t.Errorf("log line missing %q: %s", want, got)
		}
	}
}
