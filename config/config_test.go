package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	e := Default()
	e.Mode = "bogus"
	if err := e.Validate(); err == nil {
		t.Fatalf("expected an error for unknown mode")
	}
}

func TestValidateRejectsNonPositiveRestartBase(t *testing.T) {
	e := Default()
	e.RestartBase = 0
	if err := e.Validate(); err == nil {
		t.Fatalf("expected an error for zero restart_base")
	}
}
