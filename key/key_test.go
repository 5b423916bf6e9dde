package key

import (
	"errors"
	"testing"
)

func TestEncodeAddrCanonical(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "abbreviated vs full",
			a:    "2001:db8::1",
			b:    "2001:0db8:0000:0000:0000:0000:0000:0001",
		},
		{
			name: "case insensitive",
			a:    "2001:DB8::A",
			b:    "2001:db8::a",
		},
		{
			name: "leading zeros",
			a:    "::0001",
			b:    "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := EncodeAddr(tt.a)
			if err != nil {
				t.Fatalf("EncodeAddr(%q): %v", tt.a, err)
			}
			kb, err := EncodeAddr(tt.b)
			if err != nil {
				t.Fatalf("EncodeAddr(%q): %v", tt.b, err)
			}
			if ka != kb {
				t.Errorf("keys differ: %v vs %v", ka, kb)
			}
		})
	}
}

func TestEncodeAddrIdempotent(t *testing.T) {
	const addr = "fe80::dead:beef"

	k1, err := EncodeAddr(addr)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := EncodeAddr(addr)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("repeated encode differs: %v vs %v", k1, k2)
	}
}

func TestEncodeAddrInvalid(t *testing.T) {
	for _, s := range []string{"", "not-an-ip", "1.2.3.4", "2001:db8::zz", ":::"} {
		if _, err := EncodeAddr(s); err == nil {
			t.Errorf("EncodeAddr(%q): expected error", s)
		}
	}
}

func TestCompareOrder(t *testing.T) {
	low, err := EncodeAddr("::1")
	if err != nil {
		t.Fatal(err)
	}
	mid, err := EncodeAddr("::2")
	if err != nil {
		t.Fatal(err)
	}
	high, err := EncodeAddr("8000::")
	if err != nil {
		t.Fatal(err)
	}

	if Compare(low, mid) >= 0 {
		t.Errorf("expected ::1 < ::2")
	}
	if Compare(mid, high) >= 0 {
		t.Errorf("expected ::2 < 8000::")
	}
	if Compare(low, low) != 0 {
		t.Errorf("expected ::1 == ::1")
	}
}

func TestKeyString(t *testing.T) {
	k, err := EncodeAddr("2001:db8::1")
	if err != nil {
		t.Fatal(err)
	}
	if got := k.String(); got != "2001:db8::1" {
		t.Errorf("String() = %q, want %q", got, "2001:db8::1")
	}
}

func TestEncodeError(t *testing.T) {
	inner := errors.New("boom")
	err := &EncodeError{Line: 42, Input: "bogus", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("EncodeError should unwrap to its cause")
	}

	var encErr *EncodeError
	if !errors.As(error(err), &encErr) {
		t.Fatal("errors.As failed")
	}
	if encErr.Line != 42 {
		t.Errorf("Line = %d, want 42", encErr.Line)
	}
}
