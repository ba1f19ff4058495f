package utils

import "testing"

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected bool
	}{
		{"zero", 0, false},
		{"negative", -1, false},
		{"one", 1, true},
		{"two", 2, true},
		{"three", 3, false},
		{"four", 4, true},
		{"sixteen", 16, true},
		{"large power", 1024, true},
		{"large non-power", 1023, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsPowerOfTwo(tt.input); result != tt.expected {
				t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLog2(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"one", 1, 0},
		{"two", 2, 1},
		{"eight", 8, 3},
		{"1024", 1024, 10},
		{"non-power of 2", 3, -1},
		{"zero", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Log2(tt.input); result != tt.expected {
				t.Errorf("Log2(%d) = %d, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"zero", 0, 1},
		{"negative", -5, 1},
		{"one", 1, 1},
		{"five", 5, 8},
		{"eight", 8, 8},
		{"nine", 9, 16},
		{"hundred", 100, 128},
		{"already power", 1024, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NextPowerOfTwo(tt.input)
			if result != tt.expected {
				t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.input, result, tt.expected)
			}
			if !IsPowerOfTwo(result) {
				t.Errorf("NextPowerOfTwo(%d) = %d, which is not a power of 2", tt.input, result)
			}
			if result < tt.input {
				t.Errorf("NextPowerOfTwo(%d) = %d, which is less than input", tt.input, result)
			}
		})
	}
}

func TestLog2Consistency(t *testing.T) {
	for i := 1; i <= 1024; i++ {
		next := NextPowerOfTwo(i)
		log := Log2(next)
		if expected := 1 << uint(log); expected != next {
			t.Errorf("inconsistency for i=%d: NextPowerOfTwo=%d, Log2=%d, 2^Log2=%d", i, next, log, expected)
		}
	}
}
