package dashboard

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Chart defaults.
const (
	ChartWidth   = 560
	ChartHeight  = 260
	chartPadding = 32.0
	chartTicks   = 4
)

// ChartOpts customises the status chart.
type ChartOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
}

// StatusChart renders counts as one bar per status in StatusOrder.
func StatusChart(width, height int, counts StatusCounts, opts ChartOpts) (template.HTML, error) {
	colors := make([]string, len(StatusOrder))
	for i, status := range StatusOrder {
		colors[i] = statusColors[status]
	}
	return Bars(width, height, counts.Series(), StatusOrder, colors, opts)
}

// Bars renders a single series bar chart, one colour per bar. Values are
// counts, so the axis starts at zero.
func Bars(width, height int, values []float64, labels, colors []string, opts ChartOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("dashboard: chart labels required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("dashboard: %d values for %d labels", len(values), len(labels))
	}
	if width <= 0 {
		width = ChartWidth
	}
	if height <= 0 {
		height = ChartHeight
	}
	chartWidth := float64(width) - 2*chartPadding
	chartHeight := float64(height) - 2*chartPadding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("dashboard: chart viewport too small")
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5e1")

	maxVal := 0.0
	for _, v := range values {
		if v < 0 {
			return "", fmt.Errorf("dashboard: negative count %v", v)
		}
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}
	scale := chartHeight / maxVal
	bottom := chartPadding + chartHeight
	slot := chartWidth / float64(len(labels))
	barWidth := slot * 0.6

	titleID := makeID(opts.Title, "title")
	descID := makeID(opts.Title, "desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, width, height, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Counts per category")))

	for i := 0; i <= chartTicks; i++ {
		ratio := float64(i) / chartTicks
		y := bottom - ratio*chartHeight
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, chartPadding, y, chartPadding+chartWidth, y, gridColor)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, chartPadding-6, y+4, axisColor, formatTick(maxVal*ratio))
	}
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"></line>`, chartPadding, bottom, chartPadding+chartWidth, bottom, axisColor)

	for i, label := range labels {
		h := values[i] * scale
		x := chartPadding + float64(i)*slot + (slot-barWidth)/2
		color := "#64748b"
		if i < len(colors) && colors[i] != "" {
			color = colors[i]
		}
		escaped := template.HTMLEscapeString(label)
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %.0f"></rect>`, x, bottom-h, barWidth, h, color, escaped, values[i])
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="11" text-anchor="middle">%s</text>`, x+barWidth/2, bottom+16, axisColor, escaped)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	switch abs := math.Abs(v); {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case math.Abs(v-math.Round(v)) < 1e-9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
