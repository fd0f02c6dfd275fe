package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

const epsilon = 1e-9

func TestPolarToCartesian(t *testing.T) {
	tests := []struct {
		deg  float64
		want Point
	}{
		{0, Point{110, 10}},
		{90, Point{210, 110}},
		{180, Point{110, 210}},
		{270, Point{10, 110}},
	}

	for _, tt := range tests {
		got := PolarToCartesian(110, 110, 100, tt.deg)
		assert.InDelta(t, tt.want.X, got.X, epsilon, "x at %v degrees", tt.deg)
		assert.InDelta(t, tt.want.Y, got.Y, epsilon, "y at %v degrees", tt.deg)
	}
}

func TestDescribeArc(t *testing.T) {
	t.Run("small arc", func(t *testing.T) {
		path := DescribeArc(110, 110, 100, 0, 90)
		if !strings.HasPrefix(path, "M 210 110") {
			t.Errorf("expected path to start at the end angle, got %q", path)
		}
		if !strings.Contains(path, " A 100 100 0 0 0 110 10") {
			t.Errorf("expected small arc back to the start angle, got %q", path)
		}
		if !strings.HasSuffix(path, " L 110 110 Z") {
			t.Errorf("expected path to close at the center, got %q", path)
		}
	})

	t.Run("large arc", func(t *testing.T) {
		path := DescribeArc(110, 110, 100, 0, 270)
		if !strings.Contains(path, " A 100 100 0 1 0 ") {
			t.Errorf("expected large arc flag, got %q", path)
		}
	})

	t.Run("half circle is not large", func(t *testing.T) {
		path := DescribeArc(110, 110, 100, 0, 180)
		if !strings.Contains(path, " A 100 100 0 0 0 ") {
			t.Errorf("expected small arc flag at exactly 180 degrees, got %q", path)
		}
	})
}

func TestBuild(t *testing.T) {
	layout := DefaultLayout()

	t.Run("equal halves", func(t *testing.T) {
		entries := []valuation.AllocationEntry{
			{Label: "Bitcoin", Value: 100, Symbol: "btc"},
			{Label: "Ether", Value: 100},
		}

		c := Build("Current value", entries, 200, layout)

		if c.Empty {
			t.Fatal("expected non-empty chart")
		}
		if len(c.Segments) != 2 {
			t.Fatalf("expected 2 segments, got %d", len(c.Segments))
		}
		for _, s := range c.Segments {
			assert.InDelta(t, 180.0, s.EndAngle-s.StartAngle, epsilon)
			assert.InDelta(t, 50.0, s.Percentage, epsilon)
			assert.Equal(t, "50.0%", s.PercentageLabel)
		}
		assert.Equal(t, "Bitcoin-0", c.Segments[0].Key)
		assert.Equal(t, "BTC", c.Segments[0].Badge)
		assert.Equal(t, "Ether", c.Segments[1].Badge)
		assert.Equal(t, "0 0 220 220", c.ViewBox)
	})

	t.Run("angles are monotonic and close the circle", func(t *testing.T) {
		entries := []valuation.AllocationEntry{
			{Label: "a", Value: 0.1},
			{Label: "b", Value: 0},
			{Label: "c", Value: 33.3},
			{Label: "d", Value: 17},
			{Label: "e", Value: 1e-6},
		}
		total := valuation.Total(entries)

		c := Build("mixed", entries, total, layout)

		prev := 0.0
		pctSum := 0.0
		for i, s := range c.Segments {
			if s.StartAngle < prev-epsilon {
				t.Errorf("segment %d starts at %v before previous end %v", i, s.StartAngle, prev)
			}
			if s.EndAngle < s.StartAngle {
				t.Errorf("segment %d ends before it starts", i)
			}
			prev = s.EndAngle
			pctSum += s.Percentage
		}
		assert.InDelta(t, 360.0, prev, 1e-9)
		assert.InDelta(t, 100.0, pctSum, 1e-9)
	})

	t.Run("zero total is empty", func(t *testing.T) {
		entries := []valuation.AllocationEntry{{Label: "a", Value: 0}}

		c := Build("empty", entries, 0, layout)

		if !c.Empty {
			t.Error("expected empty chart")
		}
		if len(c.Segments) != 0 {
			t.Errorf("expected no segments, got %d", len(c.Segments))
		}
	})

	t.Run("negative total is empty", func(t *testing.T) {
		c := Build("negative", []valuation.AllocationEntry{{Label: "a", Value: -5}}, -5, layout)
		assert.True(t, c.Empty)
	})

	t.Run("single entry draws two half arcs", func(t *testing.T) {
		c := Build("single", []valuation.AllocationEntry{{Label: "only", Value: 42}}, 42, layout)

		if len(c.Segments) != 1 {
			t.Fatalf("expected 1 segment, got %d", len(c.Segments))
		}
		s := c.Segments[0]
		if got := strings.Count(s.Path, " A "); got != 2 {
			t.Errorf("expected two arcs, got %d in %q", got, s.Path)
		}
		assert.InDelta(t, 100.0, s.Percentage, epsilon)
		assert.Equal(t, "100.0%", s.PercentageLabel)
	})

	t.Run("anchors sit on the inner radii", func(t *testing.T) {
		entries := []valuation.AllocationEntry{
			{Label: "a", Value: 1},
			{Label: "b", Value: 3},
		}

		c := Build("anchors", entries, 4, layout)

		// First segment spans 0-90, so its mid angle is 45 degrees.
		want := PolarToCartesian(110, 110, 70, 45)
		assert.InDelta(t, want.X, c.Segments[0].LabelAnchor.X, epsilon)
		assert.InDelta(t, want.Y, c.Segments[0].LabelAnchor.Y, epsilon)

		icon := PolarToCartesian(110, 110, 85, 45)
		assert.InDelta(t, icon.X, c.Segments[0].IconAnchor.X, epsilon)
		assert.InDelta(t, icon.Y, c.Segments[0].IconAnchor.Y, epsilon)
	})

	t.Run("deterministic", func(t *testing.T) {
		entries := []valuation.AllocationEntry{
			{Label: "a", Value: 2},
			{Label: "b", Value: 5},
		}
		first := Build("x", entries, 7, layout)
		second := Build("x", entries, 7, layout)
		assert.Equal(t, first, second)
	})
}
