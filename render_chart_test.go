package pboml

import (
	"math"
	"strings"
	"testing"
)

func chartSliceFrom(t *testing.T, src string) *ChartSlice {
	t.Helper()
	node := mustDecode(t, src)
	v := sliceValidatorFor(KindChart, false)
	if !v.validate(node) {
		t.Fatalf("test chart invalid: %v", v.errors())
	}
	slice, err := processSlice(KindChart, node)
	if err != nil {
		t.Fatalf("processing test chart: %v", err)
	}
	return slice.(*ChartSlice)
}

// ---------------------------------------------------------------------------
// TestRenderChart - Datatable source
// ---------------------------------------------------------------------------

func TestRenderChart_Datatable(t *testing.T) {
	t.Parallel()

	slice := chartSliceFrom(t, `
type: chart
label: {en: Deficit over time, fr: Déficit dans le temps}
datatable:
  variables:
    year:
      label: {en: Year, fr: Année}
      type: markdown
      is_time: true
    deficit:
      label: {en: Deficit, fr: Déficit}
      type: number
      chart_type: line
  content:
    - year: "2023"
      deficit: 1200
    - year: "2024"
      deficit: 1800
    - year: "2025"
      deficit: 1500
`)

	out, err := testRenderSet(LocaleEN).renderChart(slice)
	if err != nil {
		t.Fatalf("renderChart() unexpected error: %v", err)
	}

	for _, want := range []string{
		`viewBox="0 0 800 400"`,
		"<title>Deficit over time</title>",
		"<polyline",
		`<polygon points=`,
		`opacity="0.1"`,
		"<circle",
		">2023</text>",
		">Deficit</text>",
		`role="img"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}

	// Five Y-axis tick labels with gridlines.
	if ticks := strings.Count(out, `class="pboml-chart-tick"`); ticks != 5 {
		t.Errorf("got %d ticks, want 5", ticks)
	}
	// One legend swatch per dataset.
	if swatches := strings.Count(out, "<rect"); swatches != 1 {
		t.Errorf("got %d legend swatches, want 1", swatches)
	}
}

func TestRenderChart_Arraytable(t *testing.T) {
	t.Parallel()

	slice := chartSliceFrom(t, `
type: chart
label: {en: Revenue mix, fr: Composition des revenus}
arraytable:
  chart_type: bar
  strings:
    gdp:
      en: GDP
      fr: PIB
  content:
    - ["", "2024", "2025"]
    - ["gdp", 100, 110]
    - ["other", 20, 25]
`)

	en, err := testRenderSet(LocaleEN).renderChart(slice)
	if err != nil {
		t.Fatalf("renderChart() unexpected error: %v", err)
	}
	if !strings.Contains(en, ">GDP</text>") {
		t.Errorf("substituted dataset name missing: %s", en)
	}
	// Two datasets with three bars each would need six rects plus two legend
	// swatches; only two values per dataset here: 2*2 bars + 2 swatches.
	if rects := strings.Count(en, "<rect"); rects != 6 {
		t.Errorf("got %d rects, want 6", rects)
	}
	if strings.Contains(en, "<polygon") {
		t.Errorf("bar chart rendered an area polygon: %s", en)
	}

	fr, err := testRenderSet(LocaleFR).renderChart(slice)
	if err != nil {
		t.Fatalf("renderChart() unexpected error: %v", err)
	}
	if !strings.Contains(fr, ">PIB</text>") {
		t.Errorf("French substitution missing: %s", fr)
	}
}

func TestRenderChart_NoNumericData(t *testing.T) {
	t.Parallel()

	slice := &ChartSlice{
		Datatable: &ChartDatatable{
			Variables: []TableVariable{{
				Key:   "label",
				Label: uniformLocalized("Label"),
				Type:  CellMarkdown,
			}},
			Rows: []TableRow{{"label": {Present: true, Scalar: "x"}}},
		},
	}
	if _, err := testRenderSet(LocaleEN).renderChart(slice); err == nil {
		t.Fatal("renderChart() accepted a chart with no numeric datasets")
	}
}

// ---------------------------------------------------------------------------
// TestYRange - Padding and zero floor
// ---------------------------------------------------------------------------

func TestYRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []float64
		wantLow  float64
		wantHigh float64
	}{
		{name: "positive data keeps padded low", values: []float64{10, 100}, wantLow: 1, wantHigh: 109},
		{name: "low near zero clamps", values: []float64{1, 100}, wantLow: 0, wantHigh: 109.9},
		{name: "negative data clamps to zero", values: []float64{-10, 20}, wantLow: 0, wantHigh: 23},
		{name: "flat series", values: []float64{50, 50}, wantLow: 45, wantHigh: 55},
	}

	const eps = 1e-9
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := chartData{datasets: []chartDataset{{values: tt.values}}}
			low, high := yRange(data)
			if math.Abs(low-tt.wantLow) > eps || math.Abs(high-tt.wantHigh) > eps {
				t.Errorf("yRange() = (%v, %v), want (%v, %v)", low, high, tt.wantLow, tt.wantHigh)
			}
		})
	}
}
