package ldpc

import "testing"

func TestSetIndexOf(t *testing.T) {
	cases := []struct {
		ls   int
		want int
	}{
		{2, 0}, {16, 0}, {256, 0},
		{3, 1}, {96, 1}, {384, 1},
		{5, 2}, {40, 2}, {320, 2},
		{7, 3}, {112, 3}, {224, 3},
		{9, 4}, {72, 4}, {288, 4},
		{11, 5}, {176, 5}, {352, 5},
		{13, 6}, {104, 6}, {208, 6},
		{15, 7}, {60, 7}, {240, 7},
		{0, -1}, {1, -1}, {-4, -1},
		{17, -1}, {34, -1}, {50, -1}, {300, -1}, {385, -1}, {768, -1},
	}
	for _, c := range cases {
		if got := setIndexOf(c.ls); got != c.want {
			t.Errorf("setIndexOf(%d) = %d, want %d", c.ls, got, c.want)
		}
	}
}

func TestSupportedLiftingSizes(t *testing.T) {
	sizes := SupportedLiftingSizes()
	if len(sizes) != 51 {
		t.Fatalf("supported lifting sizes: got %d, want 51", len(sizes))
	}
	if sizes[0] != 2 || sizes[len(sizes)-1] != 384 {
		t.Fatalf("range: got [%d, %d], want [2, 384]", sizes[0], sizes[len(sizes)-1])
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= sizes[i-1] {
			t.Fatalf("sizes not increasing at %d: %d <= %d", i, sizes[i], sizes[i-1])
		}
	}
	for _, z := range sizes {
		if setIndexOf(z) < 0 {
			t.Errorf("size %d does not classify", z)
		}
	}
}

func TestHighRateCase(t *testing.T) {
	for set := 0; set < numSets; set++ {
		want := 1
		if set == 6 {
			want = 2
		}
		got, err := highRateCase(BG1, set)
		if err != nil {
			t.Fatalf("BG1 set %d: %v", set, err)
		}
		if got != want {
			t.Errorf("BG1 set %d: case %d, want %d", set, got, want)
		}
	}
	for set := 0; set < numSets; set++ {
		want := 3
		if set == 3 || set == 7 {
			want = 4
		}
		got, err := highRateCase(BG2, set)
		if err != nil {
			t.Fatalf("BG2 set %d: %v", set, err)
		}
		if got != want {
			t.Errorf("BG2 set %d: case %d, want %d", set, got, want)
		}
	}
}

func TestBaseGraphDims(t *testing.T) {
	k, m, n := BG1.dims()
	if k != 22 || m != 46 || n != 68 {
		t.Fatalf("BG1 dims: got (%d,%d,%d)", k, m, n)
	}
	k, m, n = BG2.dims()
	if k != 10 || m != 42 || n != 52 {
		t.Fatalf("BG2 dims: got (%d,%d,%d)", k, m, n)
	}
	if BG1.String() != "BG1" || BG2.String() != "BG2" {
		t.Fatalf("String: %q %q", BG1.String(), BG2.String())
	}
	if BaseGraph(7).valid() {
		t.Fatal("BaseGraph(7) should not be valid")
	}
}
