package precision

import (
	"strconv"
	"testing"
)

func TestFormatQuantity_FloorsToStep(t *testing.T) {
	cases := []struct {
		value float64
		step  string
		want  string
	}{
		{0.0015, "0.001", "0.001"},
		{0.123456, "0.001", "0.123"},
		{0.999999, "0.01", "0.99"},
		{1.0, "0.001", "1.000"},
		{5.7, "1", "5"},
		{123.4, "5", "120"},
		{0.29, "0.1", "0.2"},
		{0.0009, "0.001", "0.000"},
	}

	for _, tc := range cases {
		got, err := FormatQuantity(tc.value, tc.step)
		if err != nil {
			t.Fatalf("FormatQuantity(%v, %q) error: %v", tc.value, tc.step, err)
		}
		if got != tc.want {
			t.Errorf("FormatQuantity(%v, %q) = %q, want %q", tc.value, tc.step, got, tc.want)
		}
	}
}

func TestFormatQuantity_NeverRoundsUp(t *testing.T) {
	steps := []string{"0.001", "0.01", "0.1", "1", "0.5", "0.000001"}
	values := []float64{0.0000015, 0.07, 0.15, 1.2345678, 99.999, 12345.6789}

	for _, step := range steps {
		for _, v := range values {
			got, err := FormatQuantity(v, step)
			if err != nil {
				t.Fatalf("FormatQuantity(%v, %q) error: %v", v, step, err)
			}
			parsed, err := strconv.ParseFloat(got, 64)
			if err != nil {
				t.Fatalf("输出 %q 无法解析: %v", got, err)
			}
			if parsed > v {
				t.Errorf("FormatQuantity(%v, %q) = %q 大于输入", v, step, got)
			}
		}
	}
}

func TestFormatPrice_UsesTickPlaces(t *testing.T) {
	got, err := FormatPrice(50000.127, "0.01")
	if err != nil {
		t.Fatalf("FormatPrice error: %v", err)
	}
	if got != "50000.12" {
		t.Errorf("FormatPrice = %q, want 50000.12", got)
	}

	got, err = FormatPrice(3.14159, "0.5")
	if err != nil {
		t.Fatalf("FormatPrice error: %v", err)
	}
	if got != "3.0" {
		t.Errorf("FormatPrice = %q, want 3.0", got)
	}
}

func TestFormatQuantity_InvalidStep(t *testing.T) {
	if _, err := FormatQuantity(1, "0"); err == nil {
		t.Fatal("expected error for zero step")
	}
	if _, err := FormatQuantity(1, "abc"); err == nil {
		t.Fatal("expected error for non-numeric step")
	}
}

func TestDecimalPlaces(t *testing.T) {
	cases := map[string]int{
		"1":       0,
		"0.1":     1,
		"0.001":   3,
		"0.010":   2,
		"10":      0,
		"0.00001": 5,
	}
	for step, want := range cases {
		if got := DecimalPlaces(step); got != want {
			t.Errorf("DecimalPlaces(%q) = %d, want %d", step, got, want)
		}
	}
}
