package export

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strings"

	"github.com/pavelanni/mockinterview/internal/model"
)

var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

const (
	chartWidth  = 540
	chartHeight = 340
)

// BarChart renders topic scores on a fixed 0-100 axis as inline SVG.
func BarChart(scores model.TopicScores) template.HTML {
	const (
		left, right, top, bottom = 50.0, 20.0, 40.0, 90.0
	)
	plotW := chartWidth - left - right
	plotH := chartHeight - top - bottom

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" class="chart" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="11">`,
		chartWidth, chartHeight, chartWidth, chartHeight)
	fmt.Fprintf(&sb, `<text x="%d" y="20" text-anchor="middle" font-size="14" font-weight="bold">Topic-wise Performance</text>`, chartWidth/2)

	for _, tick := range []float64{0, 25, 50, 75, 100} {
		y := top + plotH - tick/100*plotH
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ddd"/>`, left, y, left+plotW, y)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="end" dominant-baseline="middle">%g</text>`, left-6, y, tick)
	}
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`, left, top, left, top+plotH)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`, left, top+plotH, left+plotW, top+plotH)

	if n := len(scores); n > 0 {
		slot := plotW / float64(n)
		barW := slot * 0.6
		for i, e := range scores {
			v := math.Max(0, math.Min(100, e.Value))
			h := v / 100 * plotH
			x := left + slot*float64(i) + (slot-barW)/2
			y := top + plotH - h
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s: %g</title></rect>`,
				x, y, barW, h, palette[i%len(palette)], html.EscapeString(e.Key), e.Value)
			cx := x + barW/2
			ly := top + plotH + 12
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="end" transform="rotate(-30 %.1f %.1f)">%s</text>`,
				cx, ly, cx, ly, html.EscapeString(e.Key))
		}
	}

	fmt.Fprintf(&sb, `<text x="%.1f" y="%d" text-anchor="middle">Topics</text>`, left+plotW/2, chartHeight-6)
	fmt.Fprintf(&sb, `<text x="14" y="%.1f" text-anchor="middle" transform="rotate(-90 14 %.1f)">Score</text>`, top+plotH/2, top+plotH/2)
	sb.WriteString(`</svg>`)
	return template.HTML(sb.String())
}

// PieChart renders each topic's share of the summed scores as inline SVG,
// labelled with one-decimal percentages.
func PieChart(scores model.TopicScores) template.HTML {
	const (
		cx, cy, r = 170.0, 185.0, 120.0
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" class="chart" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="11">`,
		chartWidth, chartHeight, chartWidth, chartHeight)
	fmt.Fprintf(&sb, `<text x="%d" y="20" text-anchor="middle" font-size="14" font-weight="bold">Score Distribution</text>`, chartWidth/2)

	var total float64
	for _, e := range scores {
		total += math.Max(0, e.Value)
	}

	if total == 0 {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#eee"/>`, cx, cy, r)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle">No data</text>`, cx, cy)
		sb.WriteString(`</svg>`)
		return template.HTML(sb.String())
	}

	angle := -math.Pi / 2
	for i, e := range scores {
		share := math.Max(0, e.Value) / total
		if share == 0 {
			continue
		}
		color := palette[i%len(palette)]
		sweep := share * 2 * math.Pi
		if share >= 1 {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`, cx, cy, r, color)
		} else {
			x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
			x2, y2 := cx+r*math.Cos(angle+sweep), cy+r*math.Sin(angle+sweep)
			large := 0
			if sweep > math.Pi {
				large = 1
			}
			fmt.Fprintf(&sb, `<path d="M%.2f,%.2f L%.2f,%.2f A%.1f,%.1f 0 %d 1 %.2f,%.2f Z" fill="%s" stroke="#fff"/>`,
				cx, cy, x1, y1, r, r, large, x2, y2, color)
		}
		mid := angle + sweep/2
		lx, ly := cx+r*0.6*math.Cos(mid), cy+r*0.6*math.Sin(mid)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" fill="#fff">%.1f%%</text>`,
			lx, ly, share*100)
		angle += sweep
	}

	// Legend.
	for i, e := range scores {
		y := 70.0 + float64(i)*20
		fmt.Fprintf(&sb, `<rect x="330" y="%.1f" width="12" height="12" fill="%s"/>`, y, palette[i%len(palette)])
		fmt.Fprintf(&sb, `<text x="348" y="%.1f" dominant-baseline="hanging">%s</text>`, y, html.EscapeString(e.Key))
	}
	sb.WriteString(`</svg>`)
	return template.HTML(sb.String())
}
