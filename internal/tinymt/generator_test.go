package tinymt

import (
	"math"
	"testing"
)

func TestNew_SameSeedSameSequence(t *testing.T) {
	pairs := [][2]uint32{
		{12345, 1000},
		{0, 0},
		{1, 1},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{61834, 30977},
	}
	for _, p := range pairs {
		g1 := New(p[0], p[1])
		g2 := New(p[0], p[1])
		for i := 0; i < 1000; i++ {
			a, b := g1.NextU32(), g2.NextU32()
			if a != b {
				t.Fatalf("seed %v call %d: %d != %d", p, i, a, b)
			}
		}
	}
}

func TestNew_DifferentSeedsDiverge(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]uint32
	}{
		{name: "jewel seed", a: [2]uint32{12345, 1000}, b: [2]uint32{12345, 1001}},
		{name: "node id", a: [2]uint32{12345, 1000}, b: [2]uint32{12346, 1000}},
		{name: "swapped", a: [2]uint32{1, 2}, b: [2]uint32{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g1 := New(tt.a[0], tt.a[1])
			g2 := New(tt.b[0], tt.b[1])
			same := true
			for i := 0; i < 10; i++ {
				if g1.NextU32() != g2.NextU32() {
					same = false
				}
			}
			if same {
				t.Fatalf("sequences for %v and %v are identical", tt.a, tt.b)
			}
		})
	}
}

func TestNew_CounterAfterWarmUp(t *testing.T) {
	g := New(1, 1)
	if got := g.State()[0]; got != 8 {
		t.Fatalf("counter after init = %d, want 8", got)
	}
}

func TestNextU32_AdvancesCounterOnce(t *testing.T) {
	g := New(12345, 1000)
	before := g.State()
	g.NextU32()
	after := g.State()
	if after[0] != before[0]+1 {
		t.Fatalf("counter = %d, want %d", after[0], before[0]+1)
	}
	if after == before {
		t.Fatal("state did not change")
	}
}

func TestNewFromSeeds_MatchesNew(t *testing.T) {
	g1 := New(777, 4242)
	g2 := NewFromSeeds(777, 4242)
	for i := 0; i < 100; i++ {
		if a, b := g1.NextU32(), g2.NextU32(); a != b {
			t.Fatalf("call %d: New=%d NewFromSeeds=%d", i, a, b)
		}
	}
}

func TestNewFromSeeds_AnyLength(t *testing.T) {
	for _, seeds := range [][]uint32{nil, {12345}, {1, 2, 3, 4, 5}} {
		g := NewFromSeeds(seeds...)
		if got := g.State()[0]; got != 8 {
			t.Errorf("seeds %v: counter = %d, want 8", seeds, got)
		}
		g.NextU32()
	}
}

func TestAdvance_IsPureFunctionOfState(t *testing.T) {
	g1 := New(99, 7)
	for i := 0; i < 50; i++ {
		g1.NextU32()
	}
	g2 := &Generator{state: g1.State()}
	for i := 0; i < 100; i++ {
		if a, b := g1.NextU32(), g2.NextU32(); a != b {
			t.Fatalf("call %d diverged after state copy: %d != %d", i, a, b)
		}
	}
}

func TestMixFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(uint32) uint32
		in   uint32
		want uint32
	}{
		{name: "alpha zero", fn: mixAlpha, in: 0, want: 0},
		{name: "alpha one", fn: mixAlpha, in: 1, want: 0x19660D},
		{name: "bravo one", fn: mixBravo, in: 1, want: 0x5D588B65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Fatalf("got = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestNextFloat01_Range(t *testing.T) {
	g := New(12345, 1000)
	for i := 0; i < 10000; i++ {
		v := g.NextFloat01()
		if v < 0 || v >= 1 || math.IsNaN(v) {
			t.Fatalf("NextFloat01() = %v, outside [0,1)", v)
		}
	}
}

func TestNextBounded_ZeroAndOne(t *testing.T) {
	g := New(12345, 1000)
	before := g.State()
	if got := g.NextBounded(0); got != 0 {
		t.Errorf("NextBounded(0) = %d, want 0", got)
	}
	if got := g.NextBounded(1); got != 0 {
		t.Errorf("NextBounded(1) = %d, want 0", got)
	}
	if g.State() != before {
		t.Error("NextBounded(0/1) consumed generator state")
	}
}

func TestNextBounded_ConsumesOneDraw(t *testing.T) {
	g := New(5, 6)
	ref := New(5, 6)
	got := g.NextBounded(100)
	want := ref.NextU32() % 100
	if got != want {
		t.Fatalf("NextBounded(100) = %d, want %d", got, want)
	}
	if g.State() != ref.State() {
		t.Fatal("NextBounded(100) consumed more than one draw")
	}
}

func TestNextBounded_Uniformity(t *testing.T) {
	const (
		n     = 10
		draws = 10000
	)
	g := New(12345, 1000)
	var buckets [n]int
	for i := 0; i < draws; i++ {
		v := g.NextBounded(n)
		if v >= n {
			t.Fatalf("NextBounded(%d) = %d", n, v)
		}
		buckets[v]++
	}
	expected := float64(draws) / n
	for i, c := range buckets {
		if math.Abs(float64(c)-expected) > expected*0.3 {
			t.Errorf("bucket %d = %d, want within 30%% of %.0f", i, c, expected)
		}
	}
}

func TestNextBounded_LargeBound(t *testing.T) {
	g := New(1, 2)
	for i := 0; i < 1000; i++ {
		if v := g.NextBounded(0xFFFFFFFF); v == 0xFFFFFFFF {
			t.Fatalf("NextBounded(max) returned the bound")
		}
	}
}

func TestNextInRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
	}{
		{name: "small", min: 0, max: 9},
		{name: "offset", min: 100, max: 160},
		{name: "single", min: 42, max: 42},
		{name: "high half", min: 0x80000000, max: 0x80000010},
		{name: "full", min: 0, max: 0xFFFFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(8, 9)
			for i := 0; i < 500; i++ {
				v := g.NextInRange(tt.min, tt.max)
				if v < tt.min || v > tt.max {
					t.Fatalf("NextInRange(%d, %d) = %d", tt.min, tt.max, v)
				}
			}
		})
	}
}

func TestNextU32_KnownValues(t *testing.T) {
	tests := []struct {
		seeds [2]uint32
		want  []uint32
	}{
		{seeds: [2]uint32{12345, 1000}, want: []uint32{4173730448, 3670069841, 4229496350, 3894120580, 4210670961}},
		{seeds: [2]uint32{0, 0}, want: []uint32{2216047026, 2008475589, 1861335174, 1397166011, 3476925664}},
		{seeds: [2]uint32{0xFFFFFFFF, 0xFFFFFFFF}, want: []uint32{1393448298, 1092721082, 1463513685, 1380957391, 2927411879}},
		{seeds: [2]uint32{1, 1}, want: []uint32{4243829620, 1882083013, 4091001548, 2241711248, 3019094036}},
		{seeds: [2]uint32{61834, 30977}, want: []uint32{1473495467, 4160147759, 3937939668, 1221529429, 2099970025}},
	}
	for _, tt := range tests {
		g := New(tt.seeds[0], tt.seeds[1])
		for i, want := range tt.want {
			if got := g.NextU32(); got != want {
				t.Fatalf("New(%d, %d) call %d = %d, want %d", tt.seeds[0], tt.seeds[1], i, got, want)
			}
		}
	}
}

func TestNew_KnownState(t *testing.T) {
	want := [5]uint32{8, 3985465452, 2548744784, 1934485213, 1729253845}
	if got := New(1, 1).State(); got != want {
		t.Fatalf("State() = %v, want %v", got, want)
	}
}

func TestNextBounded_KnownValues(t *testing.T) {
	tests := []struct {
		seeds  [2]uint32
		bounds []uint32
		want   []uint32
	}{
		{seeds: [2]uint32{12345, 1000}, bounds: []uint32{2, 3, 10, 100, 1000}, want: []uint32{0, 2, 0, 80, 961}},
		{seeds: [2]uint32{61834, 30977}, bounds: []uint32{7, 13, 5000, 0x80000001}, want: []uint32{3, 1, 4668, 1221529429}},
	}
	for _, tt := range tests {
		g := New(tt.seeds[0], tt.seeds[1])
		for i, n := range tt.bounds {
			if got := g.NextBounded(n); got != tt.want[i] {
				t.Fatalf("New(%d, %d) NextBounded(%d) = %d, want %d", tt.seeds[0], tt.seeds[1], n, got, tt.want[i])
			}
		}
	}
}

func TestNextInRange_KnownValues(t *testing.T) {
	g := New(8, 9)
	tests := []struct {
		lo, hi, want uint32
	}{
		{0, 9, 2},
		{100, 160, 151},
		{42, 42, 42},
		{0x80000000, 0x80000010, 2147483651},
		{79, 30977, 18933},
	}
	for _, tt := range tests {
		if got := g.NextInRange(tt.lo, tt.hi); got != tt.want {
			t.Fatalf("NextInRange(%d, %d) = %d, want %d", tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestNextFloat01_KnownValues(t *testing.T) {
	g := New(1, 2)
	for i, want := range []float64{0.0999739516992122, 0.11431019939482212} {
		if got := g.NextFloat01(); math.Abs(got-want) > 1e-15 {
			t.Fatalf("call %d: NextFloat01() = %v, want %v", i, got, want)
		}
	}
}
