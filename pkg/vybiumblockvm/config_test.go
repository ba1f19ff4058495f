package vybiumblockvm

import (
	"math/big"
	"testing"
)

func TestProcessorConfigValidate(t *testing.T) {
	t.Run("DefaultIsValid", func(t *testing.T) {
		if err := DefaultProcessorConfig().Validate(); err != nil {
			t.Errorf("DefaultProcessorConfig().Validate() = %v, want nil", err)
		}
	})

	t.Run("NilModulusRejected", func(t *testing.T) {
		cfg := DefaultProcessorConfig()
		cfg.FieldModulus = nil
		if err := cfg.Validate(); err == nil {
			t.Error("expected an error for a nil field modulus")
		}
	})

	t.Run("SmallModulusRejected", func(t *testing.T) {
		cfg := DefaultProcessorConfig()
		cfg.FieldModulus = big.NewInt(2)
		if err := cfg.Validate(); err == nil {
			t.Error("expected an error for a modulus <= 2")
		}
	})

	t.Run("NonPositiveAdviceSetHeightRejected", func(t *testing.T) {
		cfg := DefaultProcessorConfig()
		cfg.MaxAdviceSetHeight = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected an error for a non-positive MaxAdviceSetHeight")
		}
	})
}

func TestProcessorConfigClone(t *testing.T) {
	cfg := DefaultProcessorConfig()
	clone := cfg.Clone()

	clone.FieldModulus.SetInt64(99)
	if cfg.FieldModulus.Cmp(big.NewInt(3221225473)) != 0 {
		t.Error("Clone must deep-copy FieldModulus, mutation leaked back")
	}

	clone.WithTraceCapture(false)
	if cfg.TraceCapture != true {
		t.Error("Clone must not alias the original config")
	}
}

func TestProcessorConfigWithFieldModulus(t *testing.T) {
	cfg := DefaultProcessorConfig().WithFieldModulus(big.NewInt(17))
	if cfg.FieldModulus.Cmp(big.NewInt(17)) != 0 {
		t.Errorf("FieldModulus = %v, want 17", cfg.FieldModulus)
	}
}
