package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestWithLogger(t *testing.T) {
	t.Run("child logger carries the key-value pairs", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "service", "mal")

		logger.Info("fetching page")

		if !strings.Contains(buf.String(), "service=mal") {
			t.Errorf("expected service=mal in output, got %q", buf.String())
		}
	})

	t.Run("parent logger is unchanged", func(t *testing.T) {
		var buf bytes.Buffer
		parent := NewLogger(&buf)
		WithLogger(parent, "service", "dataset")

		parent.Info("plain entry")

		if strings.Contains(buf.String(), "service=dataset") {
			t.Errorf("parent output carries child fields: %q", buf.String())
		}
	})
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(logger, log.DebugLevel)

	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", logger.GetLevel())
	}
}

func TestGenerateID(t *testing.T) {
	t.Run("returns unique ids", func(t *testing.T) {
		a := GenerateID()
		b := GenerateID()

		if a == "" || b == "" {
			t.Error("expected non-empty ids")
		}
		if a == b {
			t.Errorf("expected unique ids, got %s twice", a)
		}
	})
}

func TestGenerateState(t *testing.T) {
	t.Run("returns unique tokens", func(t *testing.T) {
		a, err := GenerateState()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := GenerateState()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a == b {
			t.Errorf("expected unique states, got %s twice", a)
		}
	})
}

func TestGeneratePKCEVerifier(t *testing.T) {
	t.Run("length is inside the allowed range", func(t *testing.T) {
		verifier, err := GeneratePKCEVerifier()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(verifier) < 43 || len(verifier) > 128 {
			t.Errorf("verifier length %d outside 43-128", len(verifier))
		}
	})

	t.Run("characters are url safe", func(t *testing.T) {
		verifier, err := GeneratePKCEVerifier()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range verifier {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			case c == '-' || c == '_':
			default:
				t.Errorf("unexpected character %q in verifier", c)
			}
		}
	})
}
