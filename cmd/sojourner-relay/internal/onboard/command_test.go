package onboard

import (
	"bufio"
	"strings"
	"testing"
)

func TestPromptToken(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("  xoxb-abc  \nxapp-def\n"))

	got, err := promptToken("bot token", scanner)
	if err != nil {
		t.Fatalf("promptToken: %v", err)
	}
	if got != "xoxb-abc" {
		t.Errorf("token = %q, want trimmed value", got)
	}

	got, err = promptToken("app token", scanner)
	if err != nil {
		t.Fatalf("second promptToken: %v", err)
	}
	if got != "xapp-def" {
		t.Errorf("second token = %q", got)
	}
}

func TestPromptTokenRejectsEmpty(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("   \n"))
	if _, err := promptToken("bot token", scanner); err == nil {
		t.Error("blank token must be rejected")
	}

	scanner = bufio.NewScanner(strings.NewReader(""))
	if _, err := promptToken("bot token", scanner); err == nil {
		t.Error("missing input must be rejected")
	}
}
