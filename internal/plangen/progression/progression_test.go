package progression

import (
	"math"
	"testing"

	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
)

func TestBuildLength(t *testing.T) {
	for _, weeks := range []int{1, 4, 12, 52} {
		got := Build(pointers.Float64(10), 20, weeks)
		if len(got) != weeks {
			t.Fatalf("weeks=%d: got %d checkpoints", weeks, len(got))
		}
	}
}

func TestBuildEndpoints(t *testing.T) {
	start := 10.0
	target := 25.0
	weeks := 12

	got := Build(&start, target, weeks)

	step := (target - start) / float64(weeks)
	if diff := math.Abs(got[0].Value - (start + step)); diff > 0.01 {
		t.Fatalf("week 1 = %v, want %v", got[0].Value, start+step)
	}
	last := got[len(got)-1]
	if last.Week != weeks {
		t.Fatalf("last week = %d, want %d", last.Week, weeks)
	}
	if diff := math.Abs(last.Value - target); diff > 0.01 {
		t.Fatalf("final checkpoint = %v, want %v", last.Value, target)
	}
}

func TestBuildDecrease(t *testing.T) {
	got := Build(pointers.Float64(90), 80, 10)
	for i := 1; i < len(got); i++ {
		if got[i].Value >= got[i-1].Value {
			t.Fatalf("checkpoints not decreasing at week %d: %v then %v", got[i].Week, got[i-1].Value, got[i].Value)
		}
	}
	if diff := math.Abs(got[len(got)-1].Value - 80); diff > 0.01 {
		t.Fatalf("final checkpoint = %v, want 80", got[len(got)-1].Value)
	}
}

func TestBuildNilStartAssumesConservativeBaseline(t *testing.T) {
	target := 100.0
	got := Build(nil, target, 10)

	// start should be target*0.8, so week 1 is 80 + 2.
	if diff := math.Abs(got[0].Value - 82); diff > 0.01 {
		t.Fatalf("week 1 = %v, want 82", got[0].Value)
	}
	if diff := math.Abs(got[len(got)-1].Value - target); diff > 0.01 {
		t.Fatalf("final checkpoint = %v, want %v", got[len(got)-1].Value, target)
	}
}

func TestBuildClampsWeeks(t *testing.T) {
	got := Build(pointers.Float64(5), 10, 0)
	if len(got) != 1 {
		t.Fatalf("weeks=0 should clamp to 1 checkpoint, got %d", len(got))
	}
}
