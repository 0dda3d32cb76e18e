package pboml

import (
	"strings"
	"testing"
)

func testRenderSet(loc Locale) *renderSet {
	return newRenderSet(loc, newGoldmarkConverter())
}

func tableSliceFrom(t *testing.T, src string) *TableSlice {
	t.Helper()
	node := mustDecode(t, src)
	v := sliceValidatorFor(KindTable, false)
	if !v.validate(node) {
		t.Fatalf("test table invalid: %v", v.errors())
	}
	slice, err := processSlice(KindTable, node)
	if err != nil {
		t.Fatalf("processing test table: %v", err)
	}
	return slice.(*TableSlice)
}

// ---------------------------------------------------------------------------
// TestRenderTable - Pivot shape and cell formatting
// ---------------------------------------------------------------------------

func TestRenderTable_PivotShape(t *testing.T) {
	t.Parallel()

	slice := tableSliceFrom(t, `
type: table
variables:
  year:
    label: {en: Year, fr: Année}
    type: text
  amount:
    label: {en: Amount, fr: Montant}
    type: number
content:
  - year: "2024"
    amount: 1234.5
  - year: "2025"
    amount: 999
`)

	out, err := testRenderSet(LocaleEN).renderTable(slice)
	if err != nil {
		t.Fatalf("renderTable() unexpected error: %v", err)
	}

	// One body row per variable.
	if rows := strings.Count(out, "<tr "); rows != 2 {
		t.Errorf("got %d body rows, want 2\noutput: %s", rows, out)
	}
	// Each row: one label column plus one cell per content row.
	if cells := strings.Count(out, "<td>"); cells != 4 {
		t.Errorf("got %d data cells, want 4", cells)
	}
	if labels := strings.Count(out, `<th scope="row">`); labels != 2 {
		t.Errorf("got %d label cells, want 2", labels)
	}

	// Numbers format with 0 decimals and space grouping.
	if !strings.Contains(out, "<td>1 234</td>") {
		t.Errorf("output missing formatted number cell: %s", out)
	}
	if !strings.Contains(out, "<td>999</td>") {
		t.Errorf("output missing ungrouped number cell: %s", out)
	}
}

func TestRenderTable_EmptyCellMarked(t *testing.T) {
	t.Parallel()

	slice := tableSliceFrom(t, `
type: table
variables:
  note:
    label: {en: Note, fr: Note}
    type: text
content:
  - note: null
`)

	out, err := testRenderSet(LocaleEN).renderTable(slice)
	if err != nil {
		t.Fatalf("renderTable() unexpected error: %v", err)
	}
	if !strings.Contains(out, `<span class="sr-only">Empty cell</span>`) {
		t.Errorf("empty cell not marked: %s", out)
	}

	outFR, err := testRenderSet(LocaleFR).renderTable(slice)
	if err != nil {
		t.Fatalf("renderTable() unexpected error: %v", err)
	}
	if !strings.Contains(outFR, "Cellule vide") {
		t.Errorf("French empty-cell marker missing: %s", outFR)
	}
}

func TestRenderTable_GroupRowspan(t *testing.T) {
	t.Parallel()

	slice := tableSliceFrom(t, `
type: table
variables:
  total:
    label: {en: Total, fr: Total}
    type: number
  wages:
    label: {en: Wages, fr: Salaires}
    type: number
    group: {en: Components, fr: Composantes}
  profits:
    label: {en: Profits, fr: Profits}
    type: number
    group: {en: Components, fr: Composantes}
content:
  - total: 10
    wages: 6
    profits: 4
`)

	out, err := testRenderSet(LocaleEN).renderTable(slice)
	if err != nil {
		t.Fatalf("renderTable() unexpected error: %v", err)
	}

	// The two grouped variables merge into one rowspan cell; the ungrouped
	// variable renders first with an empty group cell.
	if !strings.Contains(out, `rowspan="2" scope="rowgroup" class="pboml-table-group">Components</th>`) {
		t.Errorf("group cell missing or wrong rowspan: %s", out)
	}
	ungroupedIdx := strings.Index(out, "pboml-table-group-empty")
	groupedIdx := strings.Index(out, ">Components</th>")
	if ungroupedIdx < 0 || groupedIdx < 0 || ungroupedIdx > groupedIdx {
		t.Errorf("ungrouped variables must sort before grouped ones: %s", out)
	}
}

func TestRenderTable_MarkdownCellsAndLocale(t *testing.T) {
	t.Parallel()

	slice := tableSliceFrom(t, `
type: table
variables:
  desc:
    label: {en: Description, fr: Description}
    type: markdown
content:
  - desc: {en: "**bold** text", fr: "texte en **gras**"}
`)

	out, err := testRenderSet(LocaleFR).renderTable(slice)
	if err != nil {
		t.Fatalf("renderTable() unexpected error: %v", err)
	}
	if !strings.Contains(out, "<strong>gras</strong>") {
		t.Errorf("markdown cell not converted for fr: %s", out)
	}
	if strings.Contains(out, "bold") {
		t.Errorf("English content leaked into French render: %s", out)
	}
}

func TestRenderTable_TextVersionFromAlts(t *testing.T) {
	t.Parallel()

	slice := tableSliceFrom(t, `
type: table
label: {en: Revenue, fr: Revenus}
alts:
  - en: Revenue rose steadily.
    fr: Les revenus ont augmenté régulièrement.
variables:
  v:
    label: {en: V, fr: V}
    type: number
content:
  - v: 1
`)

	out, err := testRenderSet(LocaleEN).renderTable(slice)
	if err != nil {
		t.Fatalf("renderTable() unexpected error: %v", err)
	}
	if !strings.Contains(out, "<details") || !strings.Contains(out, "<summary>Text version</summary>") {
		t.Errorf("text version block missing: %s", out)
	}
	if !strings.Contains(out, "Revenue rose steadily.") {
		t.Errorf("alt text missing: %s", out)
	}
}
