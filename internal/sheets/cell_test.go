package sheets

import (
	"testing"
)

// TestCellIsEmpty tests which raw values count as an empty cell
func TestCellIsEmpty(t *testing.T) {
	testCases := []struct {
		name     string
		input    interface{}
		expected bool
	}{
		{"nil input", nil, true},
		{"empty string", "", true},
		{"string input", "hello", false},
		{"whitespace", " ", false},
		{"zero", 0.0, false},
		{"bool false", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewCell(tc.input).IsEmpty(); got != tc.expected {
				t.Errorf("Expected IsEmpty() %v, got %v", tc.expected, got)
			}
		})
	}
}

// TestValuesEqual tests strict equality used by filtering
func TestValuesEqual(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     interface{}
		expected bool
	}{
		{"same string", "active", "active", true},
		{"different case", "Active", "active", false},
		{"float and int", 5.0, 5, true},
		{"int64 and float", int64(3), 3.0, true},
		{"different numbers", 5.0, 5.5, false},
		{"number and string", 5.0, "5", false},
		{"string and number", "5", 5, false},
		{"bools", true, true, true},
		{"bool and string", true, "true", false},
		{"nil and nil", nil, nil, true},
		{"nil and empty", nil, "", false},
		{"empty strings", "", "", true},
		{"unsupported kinds", []int{1}, []int{1}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValuesEqual(tc.a, tc.b); got != tc.expected {
				t.Errorf("ValuesEqual(%v, %v): expected %v, got %v", tc.a, tc.b, tc.expected, got)
			}
			if got := NewCell(tc.a).Equal(tc.b); got != tc.expected {
				t.Errorf("Cell.Equal(%v, %v): expected %v, got %v", tc.a, tc.b, tc.expected, got)
			}
		})
	}
}
