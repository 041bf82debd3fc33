package mathx

import "testing"

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{0, 32, 0, 0},
		{31, 32, 0, 31},
		{32, 32, 1, 0},
		{-1, 32, -1, 31},
		{-32, 32, -1, 0},
		{-33, 32, -2, 31},
		{79, 40, 1, 39},
		{-79, 40, -2, 1},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.q {
			t.Fatalf("FloorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.q)
		}
		if got := Mod(c.a, c.b); got != c.m {
			t.Fatalf("Mod(%d, %d) = %d, want %d", c.a, c.b, got, c.m)
		}
		// Division identity.
		if c.q*c.b+c.m != c.a {
			t.Fatalf("identity broken for (%d, %d)", c.a, c.b)
		}
	}
}

func TestHash2Deterministic(t *testing.T) {
	if Hash2(1337, 4, -9) != Hash2(1337, 4, -9) {
		t.Fatal("Hash2 not deterministic")
	}
	if Hash2(1337, 4, -9) == Hash2(1338, 4, -9) {
		t.Fatal("Hash2 ignores seed")
	}
	if Hash2(1337, 4, -9) == Hash2(1337, -9, 4) {
		t.Fatal("Hash2 symmetric in x/y")
	}
}
