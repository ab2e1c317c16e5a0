package engine

import (
	"testing"
	"time"
)

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("default options must be valid: %v", err)
	}
	if err := StrictOptions().Validate(); err != nil {
		t.Errorf("strict options must be valid: %v", err)
	}
	if err := PerformanceOptions().Validate(); err != nil {
		t.Errorf("performance options must be valid: %v", err)
	}

	bad := &Options{ExecutionTimeout: -time.Second}
	if err := bad.Validate(); err == nil {
		t.Error("negative execution timeout must be rejected")
	}
}

func TestStrictOptionsAlwaysValidate(t *testing.T) {
	if !StrictOptions().AlwaysValidate {
		t.Error("strict options must force validation in every mode")
	}
}
