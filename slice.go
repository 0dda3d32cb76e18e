package pboml

// SliceKind tags the closed set of content-block variants.
type SliceKind string

const (
	KindMarkdown SliceKind = "markdown"
	KindHeading  SliceKind = "heading"
	KindTable    SliceKind = "table"
	KindChart    SliceKind = "chart"
	KindSVG      SliceKind = "svg"
	KindBitmap   SliceKind = "bitmap"
	KindKVList   SliceKind = "kvlist"
	KindHTML     SliceKind = "html"
)

// sliceKinds lists every supported kind; membership gates validator and
// processor dispatch.
var sliceKinds = map[SliceKind]bool{
	KindMarkdown: true,
	KindHeading:  true,
	KindTable:    true,
	KindChart:    true,
	KindSVG:      true,
	KindBitmap:   true,
	KindKVList:   true,
	KindHTML:     true,
}

// Presentation modes controlling the wrapper markup around a slice.
const (
	PresentationDefault = ""
	PresentationFigure  = "figure"
	PresentationAside   = "aside"
)

// SliceAttrs holds the attributes shared by every slice variant.
type SliceAttrs struct {
	ID           string
	Label        LocalizedString
	DisplayLabel bool
	Presentation string
	Sources      []LocalizedString
	Notes        []LocalizedString
	ReferencedAs LocalizedString
	Alts         []LocalizedString
}

// Slice is the closed sum over the eight content-block variants. Every
// dispatch site type-switches exhaustively over the implementations below.
type Slice interface {
	Kind() SliceKind
	Attrs() *SliceAttrs

	// sealed prevents implementations outside this package.
	sealed()
}

// CellType declares how a table, chart, or kvlist value is formatted.
type CellType string

const (
	CellText     CellType = "text"
	CellNumber   CellType = "number"
	CellMarkdown CellType = "markdown"
)

// Value is one normalized cell: absent, a scalar, a number, or a localized
// pair. Absent and null cells stay representable so renderers can mark
// empty cells explicitly instead of dropping them.
type Value struct {
	Present   bool
	IsNumber  bool
	Number    float64
	Scalar    string
	Localized LocalizedString
}

// Text resolves the cell to display text for loc. Numbers are not formatted
// here; renderers apply the declared cell type.
func (v Value) Text(loc Locale) string {
	switch {
	case !v.Present:
		return ""
	case len(v.Localized) > 0:
		return v.Localized.Get(loc)
	default:
		return v.Scalar
	}
}

// AsNumber returns the numeric value when the cell decoded as a number.
func (v Value) AsNumber() (float64, bool) {
	return v.Number, v.Present && v.IsNumber
}

// Empty reports whether the cell has nothing to show for loc.
func (v Value) Empty(loc Locale) bool {
	if !v.Present {
		return true
	}
	if v.IsNumber {
		return false
	}
	return v.Text(loc) == ""
}

// TableVariable describes one pivot row of a table (or one series of a
// datatable chart).
type TableVariable struct {
	Key           string
	Label         LocalizedString
	Type          CellType
	Unit          LocalizedString
	Group         LocalizedString
	ChartType     string
	Emphasize     bool
	IsDescriptive bool
	IsTime        bool
	SkipChart     bool
	DisplayLabel  bool
	Readonly      bool
}

// TableRow maps variable keys to cell values for one content column.
type TableRow map[string]Value

// MarkdownSlice is free-form localized markdown content.
type MarkdownSlice struct {
	SliceAttrs
	Content LocalizedString
}

// HeadingSlice is a document heading. Level 0 is the topmost rendered
// heading tag; levels run 0 through 3.
type HeadingSlice struct {
	SliceAttrs
	Content LocalizedString
	Level   int
}

// TableSlice renders as a pivot table: one row per variable, one column per
// content row. Variables keeps document order.
type TableSlice struct {
	SliceAttrs
	Variables []TableVariable
	Rows      []TableRow
}

// ChartDatatable is the variables-plus-rows chart source shape.
type ChartDatatable struct {
	Variables []TableVariable
	Rows      []TableRow
}

// ChartArraytable is the raw 2-D chart source shape: the first cell row is
// the category labels, each following row is one dataset. Strings is the
// optional locale substitution table applied to labels and text cells.
type ChartArraytable struct {
	ChartType string
	Cells     [][]Value
	Strings   map[string]LocalizedString
}

// ChartSlice holds exactly one of the two source shapes.
type ChartSlice struct {
	SliceAttrs
	Datatable  *ChartDatatable
	Arraytable *ChartArraytable
}

// SVGSlice is inline vector markup, sanitized per locale during processing.
type SVGSlice struct {
	SliceAttrs
	Content LocalizedString
}

// BitmapSlice is a responsive raster image. Thumbnails maps each locale to
// the twelve {sm,md,lg}_{1x,2x}_{webp,png} variants; Content is the
// localized full-size image URL.
type BitmapSlice struct {
	SliceAttrs
	Content    LocalizedString
	Thumbnails map[Locale]map[string]string
}

// KVField declares how one side of a key/value pair is labeled and formatted.
type KVField struct {
	Type  CellType
	Label LocalizedString
}

// KVPrototype declares the shape shared by every kvlist row.
type KVPrototype struct {
	Key   KVField
	Value KVField
}

// KVRow is one key/value pair. Values holds one or more localized values;
// multi-value rows render joined with line breaks.
type KVRow struct {
	Key    LocalizedString
	Values []LocalizedString
}

// KVListSlice is an ordered list of labeled key/value pairs.
type KVListSlice struct {
	SliceAttrs
	Prototype KVPrototype
	Rows      []KVRow
}

// HTMLSlice hosts author-supplied markup in an isolated fragment with an
// optional style sheet.
type HTMLSlice struct {
	SliceAttrs
	Content             LocalizedString
	CSS                 string
	RemoveDefaultStyles bool
}

func (s *MarkdownSlice) Kind() SliceKind { return KindMarkdown }
func (s *HeadingSlice) Kind() SliceKind  { return KindHeading }
func (s *TableSlice) Kind() SliceKind    { return KindTable }
func (s *ChartSlice) Kind() SliceKind    { return KindChart }
func (s *SVGSlice) Kind() SliceKind      { return KindSVG }
func (s *BitmapSlice) Kind() SliceKind   { return KindBitmap }
func (s *KVListSlice) Kind() SliceKind   { return KindKVList }
func (s *HTMLSlice) Kind() SliceKind     { return KindHTML }

func (s *MarkdownSlice) Attrs() *SliceAttrs { return &s.SliceAttrs }
func (s *HeadingSlice) Attrs() *SliceAttrs  { return &s.SliceAttrs }
func (s *TableSlice) Attrs() *SliceAttrs    { return &s.SliceAttrs }
func (s *ChartSlice) Attrs() *SliceAttrs    { return &s.SliceAttrs }
func (s *SVGSlice) Attrs() *SliceAttrs      { return &s.SliceAttrs }
func (s *BitmapSlice) Attrs() *SliceAttrs   { return &s.SliceAttrs }
func (s *KVListSlice) Attrs() *SliceAttrs   { return &s.SliceAttrs }
func (s *HTMLSlice) Attrs() *SliceAttrs     { return &s.SliceAttrs }

func (s *MarkdownSlice) sealed() {}
func (s *HeadingSlice) sealed()  {}
func (s *TableSlice) sealed()    {}
func (s *ChartSlice) sealed()    {}
func (s *SVGSlice) sealed()      {}
func (s *BitmapSlice) sealed()   {}
func (s *KVListSlice) sealed()   {}
func (s *HTMLSlice) sealed()     {}
