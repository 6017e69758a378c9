package testing

import (
	"testing"
	"time"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	elapsed := clk.Now().Sub(start)

	if elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestTester_Clock(t *testing.T) {
	tester := NewTesterWithT(t)
	clk := tester.Clock()

	if clk == nil {
		t.Fatal("expected non-nil clock")
	}
	if tester.Loop().Clock() != clk {
		t.Error("expected the loop to run on the fake clock")
	}

	start := clk.Now()
	clk.Advance(500 * time.Millisecond)
	if clk.Now().Sub(start) != 500*time.Millisecond {
		t.Error("clock advancement not reflected")
	}
}

func TestTester_AdvanceRunsDueTasks(t *testing.T) {
	tester := NewTesterWithT(t)
	ran := 0
	tester.Loop().ScheduleAfter(time.Second, func() { ran++ })

	if n := tester.Advance(500 * time.Millisecond); n != 0 || ran != 0 {
		t.Fatalf("task ran early (n=%d, ran=%d)", n, ran)
	}
	if n := tester.Advance(500 * time.Millisecond); n != 1 || ran != 1 {
		t.Errorf("expected task to run at its due time (n=%d, ran=%d)", n, ran)
	}
}
