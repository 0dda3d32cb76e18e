package pboml

import (
	"fmt"
	"strings"
)

// The chart renderer draws a self-contained SVG: axis lines, five Y-axis
// ticks, category labels, one series per dataset, and a horizontal legend.
// Both chart source shapes normalize into chartData before drawing.

const (
	chartWidth   = 800.0
	chartHeight  = 400.0
	chartPadding = 50.0
	chartYTicks  = 5
	legendStride = 150.0
)

// chartPalette cycles deterministically across datasets so a document
// renders identically on every run.
var chartPalette = [...]string{"#336699", "#990000", "#2e8b57", "#e69f00", "#7b68ee"}

// chartDataset is one drawable series.
type chartDataset struct {
	name      string
	chartType string
	values    []float64
}

// chartData is the normalized drawing input.
type chartData struct {
	labels   []string
	datasets []chartDataset
}

func (r *renderSet) renderChart(s *ChartSlice) (string, error) {
	var data chartData
	var err error
	switch {
	case s.Datatable != nil:
		data, err = r.chartFromDatatable(s.Datatable)
	case s.Arraytable != nil:
		data, err = r.chartFromArraytable(s.Arraytable)
	default:
		err = fmt.Errorf("chart slice has no source table")
	}
	if err != nil {
		return "", err
	}
	if len(data.datasets) == 0 {
		return "", fmt.Errorf("chart has no numeric datasets")
	}

	svg := r.drawChart(s.Label.Get(r.loc), data)
	content := `<div class="pboml-chart-wrapper">` + svg + `</div>` + r.textVersionBlock(s.Alts)
	return r.sliceSection(&s.SliceAttrs, KindChart, content), nil
}

// chartFromDatatable splits variables into the category axis and the
// numeric series. The first time or non-numeric variable provides category
// labels; every non-skipped numeric variable becomes one dataset.
func (r *renderSet) chartFromDatatable(dt *ChartDatatable) (chartData, error) {
	var labelVar *TableVariable
	for i := range dt.Variables {
		v := &dt.Variables[i]
		if v.IsTime || v.Type != CellNumber {
			labelVar = v
			break
		}
	}

	data := chartData{labels: make([]string, 0, len(dt.Rows))}
	for i, row := range dt.Rows {
		if labelVar != nil {
			data.labels = append(data.labels, row[labelVar.Key].Text(r.loc))
		} else {
			data.labels = append(data.labels, itoa(i+1))
		}
	}

	for _, v := range dt.Variables {
		if v.Type != CellNumber || v.SkipChart || (labelVar != nil && v.Key == labelVar.Key) {
			continue
		}
		ds := chartDataset{name: v.Label.Get(r.loc), chartType: v.ChartType}
		if ds.chartType == "" {
			ds.chartType = "line"
		}
		for _, row := range dt.Rows {
			n, _ := row[v.Key].AsNumber()
			ds.values = append(ds.values, n)
		}
		data.datasets = append(data.datasets, ds)
	}
	return data, nil
}

// chartFromArraytable reads the raw 2-D shape: the first row holds category
// labels, each following row is one dataset led by its name. The locale
// substitution table applies to labels and names.
func (r *renderSet) chartFromArraytable(at *ChartArraytable) (chartData, error) {
	if len(at.Cells) < 2 {
		return chartData{}, fmt.Errorf("arraytable needs a label row and at least one dataset row")
	}

	substitute := func(s string) string {
		if ls, ok := at.Strings[s]; ok {
			if localized := ls.Get(r.loc); localized != "" {
				return localized
			}
		}
		return s
	}

	data := chartData{}
	labelRow := at.Cells[0]
	// A leading corner cell aligns the label row with the name-led dataset
	// rows; skip it when present.
	start := 0
	if len(labelRow) == len(at.Cells[1]) && len(labelRow) > 1 {
		start = 1
	}
	for _, cell := range labelRow[start:] {
		data.labels = append(data.labels, substitute(cell.Text(r.loc)))
	}

	for _, row := range at.Cells[1:] {
		if len(row) == 0 {
			continue
		}
		ds := chartDataset{name: substitute(row[0].Text(r.loc)), chartType: at.ChartType}
		for _, cell := range row[1:] {
			n, _ := cell.AsNumber()
			ds.values = append(ds.values, n)
		}
		data.datasets = append(data.datasets, ds)
	}
	return data, nil
}

// yRange derives the drawable Y extent: 10% padding above and below the
// data, floored at zero.
func yRange(data chartData) (float64, float64) {
	first := true
	var min, max float64
	for _, ds := range data.datasets {
		for _, v := range ds.values {
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if first {
		return 0, 1
	}

	span := max - min
	if span == 0 {
		span = max
		if span == 0 {
			span = 1
		}
	}
	pad := span * 0.1
	low := min - pad
	if low < 0 {
		low = 0
	}
	high := max + pad
	if high <= low {
		high = low + 1
	}
	return low, high
}

func (r *renderSet) drawChart(title string, data chartData) string {
	low, high := yRange(data)
	plotW := chartWidth - 2*chartPadding
	plotH := chartHeight - 2*chartPadding

	yFor := func(v float64) float64 {
		return chartHeight - chartPadding - (v-low)/(high-low)*plotH
	}
	xFor := func(i, count int) float64 {
		if count <= 1 {
			return chartPadding + plotW/2
		}
		return chartPadding + float64(i)*plotW/float64(count-1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %.0f %.0f" role="img" aria-label=%q class="pboml-chart" xmlns="http://www.w3.org/2000/svg">`,
		chartWidth, chartHeight, title)
	if title != "" {
		b.WriteString(`<title>` + escapeHTML(title) + `</title>`)
	}

	// Axis lines.
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="pboml-chart-axis"/>`,
		chartPadding, chartPadding, chartPadding, chartHeight-chartPadding)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="pboml-chart-axis"/>`,
		chartPadding, chartHeight-chartPadding, chartWidth-chartPadding, chartHeight-chartPadding)

	// Y ticks with gridlines.
	for i := 0; i < chartYTicks; i++ {
		v := low + (high-low)*float64(i)/float64(chartYTicks-1)
		y := yFor(v)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="pboml-chart-grid"/>`,
			chartPadding, y, chartWidth-chartPadding, y)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end" class="pboml-chart-tick">%s</text>`,
			chartPadding-8, y+4, escapeHTML(formatTick(v)))
	}

	// X category labels.
	for i, label := range data.labels {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" class="pboml-chart-label">%s</text>`,
			xFor(i, len(data.labels)), chartHeight-chartPadding+20, escapeHTML(label))
	}

	// Series.
	for di, ds := range data.datasets {
		color := chartPalette[di%len(chartPalette)]
		switch ds.chartType {
		case "bar":
			r.drawBars(&b, ds, di, len(data.datasets), color, xFor, yFor, low)
		case "scatter":
			r.drawPoints(&b, ds, color, xFor, yFor)
		default:
			r.drawLine(&b, ds, color, xFor, yFor)
		}
	}

	// Legend.
	legendY := chartHeight - 12.0
	for di, ds := range data.datasets {
		x := chartPadding + float64(di)*legendStride
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="12" height="12" fill=%q/>`, x, legendY-10, chartPalette[di%len(chartPalette)])
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" class="pboml-chart-legend">%s</text>`, x+18, legendY, escapeHTML(ds.name))
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func (r *renderSet) drawLine(b *strings.Builder, ds chartDataset, color string,
	xFor func(int, int) float64, yFor func(float64) float64,
) {
	points := make([]string, 0, len(ds.values))
	for i, v := range ds.values {
		points = append(points, fmt.Sprintf("%.1f,%.1f", xFor(i, len(ds.values)), yFor(v)))
	}

	// Translucent area under the line, closed down to the plot floor. Drawn
	// first so the line and markers stay on top.
	floor := chartHeight - chartPadding
	area := append(append(make([]string, 0, len(points)+2), points...),
		fmt.Sprintf("%.1f,%.1f", chartWidth-chartPadding, floor),
		fmt.Sprintf("%.1f,%.1f", chartPadding, floor))
	fmt.Fprintf(b, `<polygon points=%q fill=%q opacity="0.1"/>`,
		strings.Join(area, " "), color)

	fmt.Fprintf(b, `<polyline points=%q fill="none" stroke=%q stroke-width="2"/>`,
		strings.Join(points, " "), color)
	r.drawPoints(b, ds, color, xFor, yFor)
}

func (r *renderSet) drawPoints(b *strings.Builder, ds chartDataset, color string,
	xFor func(int, int) float64, yFor func(float64) float64,
) {
	for i, v := range ds.values {
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="3" fill=%q/>`,
			xFor(i, len(ds.values)), yFor(v), color)
	}
}

func (r *renderSet) drawBars(b *strings.Builder, ds chartDataset, index, total int, color string,
	xFor func(int, int) float64, yFor func(float64) float64, low float64,
) {
	baseline := yFor(low)
	if low < 0 {
		baseline = yFor(0)
	}
	slot := (chartWidth - 2*chartPadding) / float64(max(len(ds.values), 1))
	barW := slot * 0.6 / float64(total)
	for i, v := range ds.values {
		center := xFor(i, len(ds.values))
		x := center - barW*float64(total)/2 + barW*float64(index)
		top := yFor(v)
		height := baseline - top
		if height < 0 {
			top, height = baseline, -height
		}
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill=%q/>`,
			x, top, barW, height, color)
	}
}
