package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{1234567.89, "$1,234,567.89"},
		{67230.12, "$67,230.12"},
		{999, "$999.00"},
		{1000, "$1,000.00"},
		{-42.5, "-$42.50"},
		{0.00001234, "$0.000012"},
		{1.999, "$2.00"},
	}

	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUSDCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.325e12, "$1.33T"},
		{45.6e6, "$45.60M"},
		{2.5e9, "$2.50B"},
		{1500, "$1.50K"},
		{12.34, "$12.34"},
		{-3.2e9, "-$3.20B"},
	}

	for _, tt := range tests {
		if got := FormatUSDCompact(tt.in); got != tt.want {
			t.Errorf("FormatUSDCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	up := 2.412
	down := -0.734
	zero := 0.0

	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"positive", &up, "+2.41%"},
		{"negative", &down, "-0.73%"},
		{"zero", &zero, "+0.00%"},
		{"nil", nil, NoChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPercent(tt.in); got != tt.want {
				t.Errorf("FormatPercent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{123, "123"},
		{1234, "1,234"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := groupThousands(tt.in); got != tt.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
