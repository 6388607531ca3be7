package main

import (
	"math"
	"testing"
)

func TestViewStateStartsAtFixedPoint(t *testing.T) {
	s := newViewState(100, 100, 0.25)

	for i := 0; i < 10; i++ {
		s.step()
	}
	if s.effX != 50 || s.effY != 50 {
		t.Errorf("center drifted without input: (%v, %v), want (50, 50)", s.effX, s.effY)
	}
}

func TestViewStateSingleStep(t *testing.T) {
	s := newViewState(100, 100, 0.25)
	s.setRaw(100, 100)
	s.step()

	// 0.75*50 + 0.25*100
	if s.effX != 62.5 || s.effY != 62.5 {
		t.Errorf("one step: (%v, %v), want (62.5, 62.5)", s.effX, s.effY)
	}
}

func TestViewStateConverges(t *testing.T) {
	s := newViewState(100, 100, 0.25)
	s.setRaw(80, 20)

	for i := 0; i < 100; i++ {
		s.step()
	}
	if math.Abs(s.effX-80) > 1e-6 || math.Abs(s.effY-20) > 1e-6 {
		t.Errorf("did not converge to the pointer: (%v, %v)", s.effX, s.effY)
	}
}
