package codec

import (
	"slices"
	"testing"
)

func TestRemoveDifferences(t *testing.T) {
	testCases := []struct {
		name  string
		in    []int32
		ndiff int
		want  []int32
	}{
		{"none", []int32{1, 1, 1}, 0, []int32{1, 1, 1}},
		{"first differences", []int32{1, 1, 1}, 1, []int32{1, 2, 3}},
		{"second differences", []int32{1, 1, 1}, 2, []int32{1, 3, 6}},
		{"single sample", []int32{9}, 2, []int32{9}},
		{"empty", []int32{}, 2, []int32{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Clone(tc.in)
			RemoveDifferences(got, tc.ndiff)
			if !slices.Equal(got, tc.want) {
				t.Errorf("RemoveDifferences = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFixFirstSample(t *testing.T) {
	testCases := []struct {
		name    string
		in      []int32
		want    []int32
		changed bool
	}{
		{"large positive", []int32{20000000, 5, 6}, []int32{5, 5, 6}, true},
		{"large negative", []int32{-16000001, 7}, []int32{7, 7}, true},
		{"at the limit", []int32{16000000, 7}, []int32{16000000, 7}, false},
		{"plausible", []int32{12, 7}, []int32{12, 7}, false},
		{"single sample", []int32{99999999}, []int32{99999999}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Clone(tc.in)
			changed := FixFirstSample(got)
			if changed != tc.changed || !slices.Equal(got, tc.want) {
				t.Errorf("FixFirstSample = %v (%v), want %v (%v)", got, changed, tc.want, tc.changed)
			}
		})
	}
}

// TestDecode_DifferencedFixture reproduces the full payload pipeline: a
// second-differenced 6-bit stream whose first integrated sample is an
// encoder artifact.
func TestDecode_DifferencedFixture(t *testing.T) {
	plain := []int32{30000000, 10, 12, 15, 11}

	// second differences of plain
	d1 := []int32{plain[0]}
	for i := 1; i < len(plain); i++ {
		d1 = append(d1, plain[i]-plain[i-1])
	}
	d2 := []int32{d1[0]}
	for i := 1; i < len(d1); i++ {
		d2 = append(d2, d1[i]-d1[i-1])
	}

	got, err := Decode(Scheme6, Encode6(d2))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	RemoveDifferences(got, 2)
	if !slices.Equal(got, plain) {
		t.Fatalf("integrated = %v, want %v", got, plain)
	}

	if !FixFirstSample(got) {
		t.Fatal("expected first sample substitution")
	}
	want := []int32{10, 10, 12, 15, 11}
	if !slices.Equal(got, want) {
		t.Errorf("fixed = %v, want %v", got, want)
	}
}

func TestChecksum(t *testing.T) {
	testCases := []struct {
		name string
		in   []int32
		want int64
	}{
		{"small", []int32{1, 2, 3}, 6},
		{"negative", []int32{-5}, 5},
		{"term reduced", []int32{150000000, 1}, 50000001},
		{"sum reduced", []int32{-99999999, -2}, 1},
		{"empty", nil, 0},
	}

	for _, tc := range testCases {
		if got := Checksum(tc.in); got != tc.want {
			t.Errorf("%s: Checksum = %d, want %d", tc.name, got, tc.want)
		}
	}
}
