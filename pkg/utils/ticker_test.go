package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{" tsla ", "TSLA"},
		{"$msft", "MSFT"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeTicker(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseTickers(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"aapl,tsla", []string{"AAPL", "TSLA"}},
		{"aapl, $tsla AAPL", []string{"AAPL", "TSLA"}},
		{" , ,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := ParseTickers(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTickers(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeTickers(t *testing.T) {
	got := NormalizeTickers([]string{"amzn", " AMZN", "googl"})
	want := []string{"AMZN", "GOOGL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTickers = %v, want %v", got, want)
	}
}
