// Package chart lays out allocation entries as pie chart sectors.
//
// Angles are in degrees with 0 at twelve o'clock, increasing clockwise.
// Build is deterministic for a given ordered set of entries and total
package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

// Point is a position in the chart's coordinate space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout fixes the geometry a chart is drawn with
type Layout struct {
	CenterX     float64 `json:"center_x"`
	CenterY     float64 `json:"center_y"`
	Radius      float64 `json:"radius"`
	LabelRadius float64 `json:"label_radius"`
	IconRadius  float64 `json:"icon_radius"`
}

// DefaultLayout fits a 220x220 view box
func DefaultLayout() Layout {
	return Layout{
		CenterX:     110,
		CenterY:     110,
		Radius:      100,
		LabelRadius: 70,
		IconRadius:  85,
	}
}

// ViewBox returns the SVG view box enclosing the layout
func (l Layout) ViewBox() string {
	w := formatNumber(l.CenterX * 2)
	h := formatNumber(l.CenterY * 2)
	return "0 0 " + w + " " + h
}

// Segment is one sector of a chart
type Segment struct {
	Key             string                    `json:"key"`
	Entry           valuation.AllocationEntry `json:"entry"`
	StartAngle      float64                   `json:"start_angle"`
	EndAngle        float64                   `json:"end_angle"`
	Path            string                    `json:"path"`
	LabelAnchor     Point                     `json:"label_anchor"`
	IconAnchor      Point                     `json:"icon_anchor"`
	Percentage      float64                   `json:"percentage"`
	PercentageLabel string                    `json:"percentage_label"`
	Badge           string                    `json:"badge"`
}

// Chart is a titled pie chart. Empty charts carry no segments and should be
// rendered as a "no data" state
type Chart struct {
	Title    string    `json:"title"`
	Total    float64   `json:"total"`
	ViewBox  string    `json:"view_box"`
	Empty    bool      `json:"empty"`
	Segments []Segment `json:"segments"`
}

// PolarToCartesian converts an angle on a circle of radius r around (cx, cy)
func PolarToCartesian(cx, cy, r, deg float64) Point {
	rad := (deg - 90) * math.Pi / 180
	return Point{
		X: cx + r*math.Cos(rad),
		Y: cy + r*math.Sin(rad),
	}
}

// DescribeArc returns a closed sector path from start to end degrees. The
// path moves to the end point and sweeps back to the start point so that
// consecutive sectors meet without gaps
func DescribeArc(cx, cy, r, start, end float64) string {
	from := PolarToCartesian(cx, cy, r, end)
	to := PolarToCartesian(cx, cy, r, start)

	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, from)
	writeArc(&b, r, end-start > 180, to)
	b.WriteString(" L ")
	writePoint(&b, Point{X: cx, Y: cy})
	b.WriteString(" Z")
	return b.String()
}

// describeFullCircle splits a 360 degree sector into two half arcs. A single
// arc whose endpoints coincide is not drawn by SVG renderers
func describeFullCircle(cx, cy, r, start float64) string {
	from := PolarToCartesian(cx, cy, r, start+360)
	mid := PolarToCartesian(cx, cy, r, start+180)
	to := PolarToCartesian(cx, cy, r, start)

	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, from)
	writeArc(&b, r, false, mid)
	writeArc(&b, r, false, to)
	b.WriteString(" L ")
	writePoint(&b, Point{X: cx, Y: cy})
	b.WriteString(" Z")
	return b.String()
}

// Build lays entries out clockwise from twelve o'clock. When total is not
// positive the chart is empty
func Build(title string, entries []valuation.AllocationEntry, total float64, layout Layout) Chart {
	total = valuation.Number(total)
	c := Chart{
		Title:    title,
		Total:    total,
		ViewBox:  layout.ViewBox(),
		Segments: []Segment{},
	}
	if total <= 0 {
		c.Empty = true
		return c
	}

	cumulative := 0.0
	for i, e := range entries {
		value := valuation.Number(e.Value)
		span := value / total * 360
		start := cumulative
		cumulative += span
		end := cumulative
		mid := start + span/2

		var path string
		if span >= 360 {
			path = describeFullCircle(layout.CenterX, layout.CenterY, layout.Radius, start)
		} else {
			path = DescribeArc(layout.CenterX, layout.CenterY, layout.Radius, start, end)
		}

		pct := valuation.Share(value, total)
		c.Segments = append(c.Segments, Segment{
			Key:             e.Label + "-" + strconv.Itoa(i),
			Entry:           e,
			StartAngle:      start,
			EndAngle:        end,
			Path:            path,
			LabelAnchor:     PolarToCartesian(layout.CenterX, layout.CenterY, layout.LabelRadius, mid),
			IconAnchor:      PolarToCartesian(layout.CenterX, layout.CenterY, layout.IconRadius, mid),
			Percentage:      pct,
			PercentageLabel: strconv.FormatFloat(pct, 'f', 1, 64) + "%",
			Badge:           badge(e),
		})
	}
	return c
}

func badge(e valuation.AllocationEntry) string {
	if e.Symbol != "" {
		return strings.ToUpper(e.Symbol)
	}
	return e.Label
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(formatNumber(p.X))
	b.WriteByte(' ')
	b.WriteString(formatNumber(p.Y))
}

func writeArc(b *strings.Builder, r float64, large bool, to Point) {
	flag := "0"
	if large {
		flag = "1"
	}
	b.WriteString(" A ")
	b.WriteString(formatNumber(r))
	b.WriteByte(' ')
	b.WriteString(formatNumber(r))
	b.WriteString(" 0 ")
	b.WriteString(flag)
	b.WriteString(" 0 ")
	writePoint(b, to)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
