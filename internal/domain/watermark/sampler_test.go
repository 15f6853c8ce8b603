package watermark

import (
	"reflect"
	"testing"
)

func TestSampleIndices_ZeroFrames(t *testing.T) {
	got := SampleIndices(0, 5)
	if !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("SampleIndices(0, 5) = %v, want [0]", got)
	}
}

func TestSampleIndices_Table(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		count  int
		want   []int
	}{
		{"even spread", 600, 5, []int{100, 200, 300, 400, 500}},
		{"short video clamps step to 1", 3, 5, []int{1, 2, 3, 4, 5}},
		{"single sample", 100, 1, []int{50}},
		{"default count on zero request", 600, 0, []int{100, 200, 300, 400, 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleIndices(tt.total, tt.count)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SampleIndices(%d, %d) = %v, want %v", tt.total, tt.count, got, tt.want)
			}
		})
	}
}

func TestSampleIndices_StrictlyIncreasingMultiples(t *testing.T) {
	totals := []int{1, 7, 30, 144, 100000}
	for _, total := range totals {
		n := 5
		got := SampleIndices(total, n)
		if len(got) != n {
			t.Fatalf("total=%d: got %d indices, want %d", total, len(got), n)
		}
		step := total / (n + 1)
		if step < 1 {
			step = 1
		}
		for i, idx := range got {
			if idx != (i+1)*step {
				t.Fatalf("total=%d: index %d = %d, want %d", total, i, idx, (i+1)*step)
			}
			if i > 0 && idx <= got[i-1] {
				t.Fatalf("total=%d: indices not strictly increasing: %v", total, got)
			}
		}
	}
}
