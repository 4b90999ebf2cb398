package term

import (
	"strings"
	"testing"

	"github.com/backmassage/silk2mp3/internal/config"
)

func TestResolve(t *testing.T) {
	if !resolve(config.ColorAlways) {
		t.Error("always: colors off")
	}
	if resolve(config.ColorNever) {
		t.Error("never: colors on")
	}
	t.Setenv("NO_COLOR", "1")
	if resolve(config.ColorAuto) {
		t.Error("auto with NO_COLOR: colors on")
	}
}

func TestConfigure(t *testing.T) {
	Configure(config.ColorAlways)
	if !Enabled() || !strings.Contains(Red.Render("x"), "\x1b[") {
		t.Errorf("always: Red renders %q", Red.Render("x"))
	}
	Configure(config.ColorNever)
	if Enabled() || Red.Render("x") != "x" {
		t.Errorf("never: Red renders %q", Red.Render("x"))
	}
}

func TestIsTerminal_Nil(t *testing.T) {
	if IsTerminal(nil) {
		t.Error("nil file reported as terminal")
	}
}
