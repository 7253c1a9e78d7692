package otp

import "testing"

func TestNumericCodeGenerate(t *testing.T) {
	gen := NewNumericCode(6)

	for range 50 {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
	}
}

func TestNumericCodeLengthBounds(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{4, 4},
		{10, 10},
		{0, 6},
		{3, 6},
		{11, 6},
	}

	for _, c := range cases {
		gen := NewNumericCode(c.in)
		if got := gen.Length(); got != c.want {
			t.Fatalf("length %d: expected %d, got %d", c.in, c.want, got)
		}
	}
}
