package protocol

import "testing"

func TestDiagnostics(t *testing.T) {
	if got := InvalidCharacter('x'); got != "!! Invalid character: 120" {
		t.Errorf("Expected invalid character diagnostic, got %q", got)
	}
	if got := UnhandledCommand('G', 4); got != "!! Unhandled command: G4.00" {
		t.Errorf("Expected unhandled command diagnostic, got %q", got)
	}
	if got := UnhandledCommand('M', -2.5); got != "!! Unhandled command: M-2.50" {
		t.Errorf("Expected negative value diagnostic, got %q", got)
	}
	if got := RejectedMove("zero radius"); got != "!! Rejected move: zero radius" {
		t.Errorf("Expected rejected move diagnostic, got %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind LineKind
	}{
		{"ok\r\n", KindAck},
		{">>> ok", KindAck},
		{"( Starting )\r\n", KindBanner},
		{">>> !! Invalid character: 120\r\n", KindDiagnostic},
		{"!! Unhandled command: M3.00", KindDiagnostic},
		{">>> ", KindEmpty},
		{"", KindEmpty},
		{"hello", KindOther},
	}

	for _, test := range tests {
		if got := Classify(test.line); got != test.kind {
			t.Errorf("Classify(%q): expected %s, got %s", test.line, test.kind, got)
		}
	}
}

func TestStripPrompt(t *testing.T) {
	if got := StripPrompt(">>> >>> !! Rejected move: x"); got != "!! Rejected move: x" {
		t.Errorf("Expected prompts stripped, got %q", got)
	}
}
