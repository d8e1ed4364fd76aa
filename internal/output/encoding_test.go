package output

import (
	"bytes"
	"testing"
)

func TestEncodeSortsKeys(t *testing.T) {
	v := map[string]interface{}{"zebra": 1, "alpha": 2, "mid": 3}
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"alpha":2,"mid":3,"zebra":1}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	v := map[string]interface{}{
		"nested": map[string]interface{}{"b": 2, "a": 1},
		"list":   []interface{}{1.0, 2.5},
		"score":  0.1234567891,
	}
	first, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical input must produce identical bytes")
	}
}

func TestEncodeOmitsNils(t *testing.T) {
	v := map[string]interface{}{"present": 1, "absent": nil}
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(got) != `{"present":1}` {
		t.Errorf("got %s", got)
	}
}

func TestEncodeStructTags(t *testing.T) {
	type row struct {
		Name   string  `json:"name"`
		Score  float64 `json:"score"`
		Hidden string  `json:"-"`
		Empty  string  `json:"empty,omitempty"`
	}
	got, err := Encode(row{Name: "a", Score: 1.23456789, Hidden: "x"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"name":"a","score":1.234568}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEncodeNilSliceAsEmpty(t *testing.T) {
	v := map[string]interface{}{"items": []string(nil)}
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(got) != `{"items":[]}` {
		t.Errorf("got %s", got)
	}
}

func TestRoundFloat(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1.23456789, 1.234568},
		{1.0, 1.0},
		{0.0000001, 0.0},
	}
	for _, tc := range cases {
		if got := RoundFloat(tc.in); got != tc.want {
			t.Errorf("RoundFloat(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{50.0, "50"},
		{33.333333333, "33.333333"},
		{0.5, "0.5"},
	}
	for _, tc := range cases {
		if got := FormatFloat(tc.in); got != tc.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
