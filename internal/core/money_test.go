package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"$1,234.56", 123456, true},
		{"-1", -100, true},
		{"-0.005", -1, true},
		{"+3", 300, true},
		{"-$40", -4000, true},
		{"", 0, true},
		{"0", 0, true},
		{".5", 50, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e5", 0, false},
		{"$", 0, false},
		{"--1", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		m      Money
		plain  string
		pretty string
	}{
		{Cents(0), "0.00", "$0.00"},
		{Cents(5), "0.05", "$0.05"},
		{Cents(123456), "1234.56", "$1,234.56"},
		{Cents(-1200), "-12.00", "-$12.00"},
		{Dollars(1000000), "1000000.00", "$1,000,000.00"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.plain {
			t.Fatalf("String(%d) = %q, want %q", tc.m.Cents, got, tc.plain)
		}
		if got := tc.m.Format(); got != tc.pretty {
			t.Fatalf("Format(%d) = %q, want %q", tc.m.Cents, got, tc.pretty)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Cents(250), Cents(-1000)
	if got := a.Add(b); got.Cents != -750 {
		t.Fatalf("add: %d", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 1250 {
		t.Fatalf("sub: %d", got.Cents)
	}
	if got := Sum(a, b, Cents(750)); !got.IsZero() {
		t.Fatalf("sum: %d", got.Cents)
	}
}

func TestNullMoney(t *testing.T) {
	present := Some(Cents(500))
	absent := NullMoney{}

	if d := present.Sub(Some(Cents(200))); !d.Valid || d.Cents != 300 {
		t.Fatalf("expected 300, got %+v", d)
	}
	if d := present.Sub(absent); d.Valid {
		t.Fatalf("delta with absent side must be absent")
	}
	if absent.Format() != "n/a" {
		t.Fatalf("got %q", absent.Format())
	}

	b, err := json.Marshal(struct {
		A NullMoney `json:"a"`
		B NullMoney `json:"b"`
	}{present, absent})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"a":5.00,"b":null}` {
		t.Fatalf("unexpected json %s", b)
	}

	var back struct {
		A NullMoney `json:"a"`
		B NullMoney `json:"b"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.A.Valid || back.A.Cents != 500 || back.B.Valid {
		t.Fatalf("unexpected decode %+v", back)
	}
}
