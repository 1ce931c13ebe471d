package core

import (
	"math"
	"testing"
)

func TestItoa(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-42, "-42"},
		{40630, "40630"},
	}

	for _, test := range tests {
		if got := Itoa(test.in); got != test.want {
			t.Errorf("Itoa(%d): expected %s, got %s", test.in, test.want, got)
		}
	}
}

func TestFtoa(t *testing.T) {
	tests := []struct {
		in       float64
		decimals int
		want     string
	}{
		{0, 2, "0.00"},
		{4, 2, "4.00"},
		{21.5, 2, "21.50"},
		{-3.14159, 3, "-3.142"},
		{0.125, 2, "0.13"},
		{-0.001, 2, "0.00"},
		{10, 0, "10"},
		{1e16, 2, "10000000000000000.00"},
		{-1e20, 2, "-100000000000000000000.00"},
		{math.Inf(1), 2, "inf"},
		{math.Inf(-1), 2, "-inf"},
		{math.NaN(), 2, "nan"},
	}

	for _, test := range tests {
		if got := Ftoa(test.in, test.decimals); got != test.want {
			t.Errorf("Ftoa(%v, %d): expected %s, got %s", test.in, test.decimals, test.want, got)
		}
	}
}

func TestTimingRing(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()

	for i := 0; i < TimingRingSize+3; i++ {
		RecordTiming(EvtWaypoint, 1, uint32(i), int32(i), 0)
	}

	events := TimingEvents()
	if len(events) != TimingRingSize {
		t.Fatalf("Expected %d events, got %d", TimingRingSize, len(events))
	}
	if events[0].Clock != 3 {
		t.Errorf("Expected oldest event clock 3, got %d", events[0].Clock)
	}
	if events[len(events)-1].Clock != TimingRingSize+2 {
		t.Errorf("Expected newest event clock %d, got %d", TimingRingSize+2, events[len(events)-1].Clock)
	}

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	DumpTimingRing()
	if len(lines) != TimingRingSize+3 {
		t.Errorf("Expected %d dump lines, got %d", TimingRingSize+3, len(lines))
	}
}
