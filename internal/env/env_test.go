package env

import (
	"testing"
	"time"
)

func TestGetEnvDefault(t *testing.T) {
	if got := GetEnv("LINKCHECK_DOES_NOT_EXIST", "fallback"); got != "fallback" {
		t.Errorf("GetEnv: expected fallback got %s", got)
	}
}

func TestGetEnvAsIntDefault(t *testing.T) {
	if got := GetEnvAsInt("LINKCHECK_DOES_NOT_EXIST", 42); got != 42 {
		t.Errorf("GetEnvAsInt: expected 42 got %d", got)
	}
}

func TestGetEnvAsIntParsed(t *testing.T) {
	t.Setenv("LINKCHECK_TEST_INT", "7")
	if got := GetEnvAsInt("LINKCHECK_TEST_INT", 42); got != 7 {
		t.Errorf("GetEnvAsInt: expected 7 got %d", got)
	}
}

func TestGetEnvAsDurationParsed(t *testing.T) {
	t.Setenv("LINKCHECK_TEST_DURATION", "250ms")
	if got := GetEnvAsDuration("LINKCHECK_TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Errorf("GetEnvAsDuration: expected 250ms got %s", got)
	}
}
