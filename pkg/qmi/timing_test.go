package qmi

import "testing"

func TestDeriveTiming(t *testing.T) {
	testCases := []struct {
		desc    string
		clockHz int64
		want    Timing
	}{
		{
			desc:    "150MHz, plain divide by two",
			clockHz: 150_000_000,
			want:    Timing{ClockDivider: 2, MaxSelect: 18, MinDeselect: 2, RXDelay: 2},
		},
		{
			desc:    "133MHz, ideal divider 1 forced to 2 above 100MHz",
			clockHz: 133_000_000,
			want:    Timing{ClockDivider: 2, MaxSelect: 16, MinDeselect: 2, RXDelay: 2},
		},
		{
			desc:    "100MHz, undivided clock allowed",
			clockHz: 100_000_000,
			want:    Timing{ClockDivider: 1, MaxSelect: 12, MinDeselect: 1, RXDelay: 1},
		},
		{
			desc:    "266MHz, extra rx settling cycle above 100MHz effective",
			clockHz: 266_000_000,
			want:    Timing{ClockDivider: 2, MaxSelect: 33, MinDeselect: 4, RXDelay: 3},
		},
		{
			desc:    "50MHz, everything relaxed",
			clockHz: 50_000_000,
			want:    Timing{ClockDivider: 1, MaxSelect: 6, MinDeselect: 0, RXDelay: 1},
		},
	}

	for _, tc := range testCases {
		got := DeriveTiming(tc.clockHz, DefaultLimits)
		if got != tc.want {
			t.Errorf("Test %q: got %+v, want %+v", tc.desc, got, tc.want)
		}
	}
}

func TestDeriveTimingDeterministic(t *testing.T) {
	a := DeriveTiming(150_000_000, DefaultLimits)
	b := DeriveTiming(150_000_000, DefaultLimits)
	if a != b {
		t.Fatalf("same inputs gave different timings: %+v vs %+v", a, b)
	}
}

func TestDeriveTimingProperties(t *testing.T) {
	// The divided clock must respect the chip's limit, except where the
	// divider is forced from 1 to 2 (where the undivided clock already
	// satisfied it).
	clocks := []int64{1_000_000, 48_000_000, 100_000_000, 125_000_000,
		133_000_000, 150_000_000, 200_000_000, 266_000_000, 300_000_000}
	for _, clk := range clocks {
		got := DeriveTiming(clk, DefaultLimits)
		if got.ClockDivider < 1 {
			t.Errorf("clock %d: divider %d < 1", clk, got.ClockDivider)
		}
		forced := clk <= DefaultLimits.MaxSCKHz && clk > DefaultLimits.HighSysClockHz
		if !forced && clk/int64(got.ClockDivider) > DefaultLimits.MaxSCKHz {
			t.Errorf("clock %d: divided clock %d exceeds chip limit", clk, clk/int64(got.ClockDivider))
		}
		if got.RXDelay < got.ClockDivider {
			t.Errorf("clock %d: rxdelay %d below divider %d", clk, got.RXDelay, got.ClockDivider)
		}
	}
}
