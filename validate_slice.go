package pboml

// maxStrictHeadingLength caps heading content per locale in strict mode.
const maxStrictHeadingLength = 100

// sliceValidatorFor resolves the validator for one slice kind. The switch is
// exhaustive over the closed kind set.
func sliceValidatorFor(kind SliceKind, strict bool) validator {
	switch kind {
	case KindMarkdown:
		return &markdownValidator{}
	case KindHeading:
		return &headingValidator{strict: strict}
	case KindTable:
		return &tableValidator{}
	case KindChart:
		return &chartValidator{}
	case KindSVG:
		return &svgValidator{}
	case KindBitmap:
		return &bitmapValidator{}
	case KindKVList:
		return &kvlistValidator{}
	case KindHTML:
		return &htmlValidator{}
	default:
		return nil
	}
}

// checkSliceAttrs validates the attributes shared by every slice variant.
func checkSliceAttrs(m mapNode, acc *errorAccumulator) bool {
	before := len(acc.findings)

	optionalLocalized(m.raw, "label", acc)
	optionalLocalized(m.raw, "referenced_as", acc)

	if raw, present := mapGet(m.items, "presentation"); present {
		p, isStr := asString(raw)
		if !isStr || (p != PresentationDefault && p != PresentationFigure && p != PresentationAside) {
			acc.addf(ctx("field", "presentation"), "presentation must be empty, %q, or %q",
				PresentationFigure, PresentationAside)
		}
	}

	for _, field := range []string{"sources", "notes", "alts"} {
		raw, present := mapGet(m.items, field)
		if !present {
			continue
		}
		entries, ok := asSlice(raw)
		if !ok {
			acc.addf(ctx("field", field), "field %q must be a sequence of localized values", field)
			continue
		}
		for i, entry := range entries {
			checkLocalized(entry, field+"["+itoa(i)+"]", acc)
		}
	}

	if raw, present := mapGet(m.items, "display_label"); present {
		if _, isBool := asBool(raw); !isBool {
			acc.add(ctx("field", "display_label"), "field \"display_label\" must be a boolean")
		}
	}

	return len(acc.findings) == before
}

// mapNode pairs a decoded mapping with its raw form so helpers taking either
// shape stay cheap.
type mapNode struct {
	raw   any
	items mapItems
}

func nodeMap(v any) (mapNode, bool) {
	m, ok := asMap(v)
	if !ok {
		return mapNode{}, false
	}
	return mapNode{raw: v, items: m}, true
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

type markdownValidator struct {
	acc errorAccumulator
}

func (v *markdownValidator) errors() []FieldError { return v.acc.findings }

func (v *markdownValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "markdown"), "markdown slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}
	raw, present := mapGet(m.items, "content")
	if !present {
		v.acc.add(ctx("slice", "markdown", "field", "content"), "markdown slice is missing content")
		return false
	}
	_, ok = checkLocalizedSafe(raw, "content", &v.acc)
	return ok
}

// ---------------------------------------------------------------------------
// Heading
// ---------------------------------------------------------------------------

type headingValidator struct {
	strict bool
	acc    errorAccumulator
}

func (v *headingValidator) errors() []FieldError { return v.acc.findings }

func (v *headingValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "heading"), "heading slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	contentRaw, present := mapGet(m.items, "content")
	if !present {
		v.acc.add(ctx("slice", "heading", "field", "content"), "heading slice is missing content")
		return false
	}
	content, ok := checkLocalizedSafe(contentRaw, "content", &v.acc)
	if !ok {
		return false
	}

	levelRaw, present := mapGet(m.items, "level")
	level, isInt := asInt(levelRaw)
	switch {
	case !present:
		v.acc.add(ctx("slice", "heading", "field", "level"), "heading slice is missing its level")
		return false
	case !isInt || level < 0 || level > 3:
		v.acc.addf(ctx("slice", "heading", "field", "level"), "heading level must be between 0 and 3")
		return false
	}

	if v.strict {
		for _, loc := range Locales {
			if len([]rune(content.Get(loc))) > maxStrictHeadingLength {
				v.acc.addf(ctx("slice", "heading", "field", "content", "locale", string(loc)),
					"heading content exceeds %d characters for locale %q", maxStrictHeadingLength, loc)
			}
		}
	}

	return v.acc.empty()
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

type tableValidator struct {
	acc errorAccumulator
}

func (v *tableValidator) errors() []FieldError { return v.acc.findings }

func (v *tableValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "table"), "table slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	varKeys, ok := checkVariables(m.items, "table", tableCellTypes, &v.acc)
	if !ok {
		return false
	}
	return checkContentRows(m.items, "table", varKeys, &v.acc)
}

var tableCellTypes = map[string]bool{
	string(CellText): true, string(CellNumber): true, string(CellMarkdown): true,
}

var chartCellTypes = map[string]bool{
	string(CellMarkdown): true, string(CellNumber): true,
}

var chartKinds = map[string]bool{"bar": true, "line": true, "scatter": true}

// checkVariables validates the variables mapping shared by table slices and
// datatable charts, returning the declared keys in document order.
func checkVariables(m mapItems, slice string, allowedTypes map[string]bool, acc *errorAccumulator) ([]string, bool) {
	raw, present := mapGet(m, "variables")
	if !present {
		acc.addf(ctx("slice", slice, "field", "variables"), "%s slice is missing variables", slice)
		return nil, false
	}
	vars, ok := asMap(raw)
	if !ok || len(vars) == 0 {
		acc.addf(ctx("slice", slice, "field", "variables"), "%s variables must be a non-empty mapping", slice)
		return nil, false
	}

	keys := make([]string, 0, len(vars))
	ok = true
	for _, item := range vars {
		key := keyString(item.Key)
		keys = append(keys, key)

		vm, isMap := asMap(item.Value)
		if !isMap {
			acc.addf(ctx("slice", slice, "variable", key), "variable %q must be a mapping", key)
			ok = false
			continue
		}

		labelRaw, hasLabel := mapGet(vm, "label")
		if !hasLabel {
			acc.addf(ctx("slice", slice, "variable", key), "variable %q is missing its label", key)
			ok = false
		} else if _, labelOK := checkLocalized(labelRaw, "variables."+key+".label", acc); !labelOK {
			ok = false
		}

		typRaw, _ := mapGet(vm, "type")
		typ, _ := asString(typRaw)
		if !allowedTypes[typ] {
			acc.addf(ctx("slice", slice, "variable", key, "type", typ),
				"variable %q has unsupported type %q", key, typ)
			ok = false
		}

		if ctRaw, hasCT := mapGet(vm, "chart_type"); hasCT {
			chartType, _ := asString(ctRaw)
			if !chartKinds[chartType] {
				acc.addf(ctx("slice", slice, "variable", key, "chart_type", chartType),
					"variable %q has unsupported chart_type %q", key, chartType)
				ok = false
			}
		}
	}

	if !ok {
		return nil, false
	}
	return keys, true
}

// checkContentRows validates that every content row's keys exactly match the
// declared variable keys: no missing, no extra.
func checkContentRows(m mapItems, slice string, varKeys []string, acc *errorAccumulator) bool {
	raw, present := mapGet(m, "content")
	if !present {
		acc.addf(ctx("slice", slice, "field", "content"), "%s slice is missing content", slice)
		return false
	}
	rows, ok := asSlice(raw)
	if !ok || len(rows) == 0 {
		acc.addf(ctx("slice", slice, "field", "content"), "%s content must be a non-empty sequence", slice)
		return false
	}

	declared := make(map[string]bool, len(varKeys))
	for _, k := range varKeys {
		declared[k] = true
	}

	ok = true
	for i, rowRaw := range rows {
		row, isMap := asMap(rowRaw)
		if !isMap {
			acc.addf(ctx("slice", slice, "row", itoa(i)), "content row %d must be a mapping", i)
			ok = false
			continue
		}
		seen := make(map[string]bool, len(row))
		for _, key := range mapKeys(row) {
			seen[key] = true
			if !declared[key] {
				acc.addf(ctx("slice", slice, "row", itoa(i), "key", key),
					"content row %d carries undeclared variable %q", i, key)
				ok = false
			}
		}
		for _, key := range varKeys {
			if !seen[key] {
				acc.addf(ctx("slice", slice, "row", itoa(i), "key", key),
					"content row %d is missing variable %q", i, key)
				ok = false
			}
		}
	}
	return ok
}

// ---------------------------------------------------------------------------
// Chart
// ---------------------------------------------------------------------------

type chartValidator struct {
	acc errorAccumulator
}

func (v *chartValidator) errors() []FieldError { return v.acc.findings }

func (v *chartValidator) validate(node any) bool {
	m, ok := nodeMap(node)
	if !ok {
		v.acc.add(ctx("slice", "chart"), "chart slice must be a mapping")
		return false
	}
	if !checkSliceAttrs(m, &v.acc) {
		return false
	}

	hasData := mapHas(m.items, "datatable")
	hasArray := mapHas(m.items, "arraytable")
	switch {
	case hasData && hasArray:
		v.acc.add(ctx("slice", "chart"), "chart slice must declare exactly one of datatable or arraytable")
		return false
	case !hasData && !hasArray:
		v.acc.add(ctx("slice", "chart"), "chart slice is missing its datatable or arraytable")
		return false
	}

	if hasData {
		raw, _ := mapGet(m.items, "datatable")
		dt, isMap := asMap(raw)
		if !isMap {
			v.acc.add(ctx("slice", "chart", "field", "datatable"), "chart datatable must be a mapping")
			return false
		}
		varKeys, ok := checkVariables(dt, "chart", chartCellTypes, &v.acc)
		if !ok {
			return false
		}
		return checkContentRows(dt, "chart", varKeys, &v.acc)
	}

	raw, _ := mapGet(m.items, "arraytable")
	at, isMap := asMap(raw)
	if !isMap {
		v.acc.add(ctx("slice", "chart", "field", "arraytable"), "chart arraytable must be a mapping")
		return false
	}

	ctRaw, present := mapGet(at, "chart_type")
	chartType, _ := asString(ctRaw)
	if !present || !chartKinds[chartType] {
		v.acc.addf(ctx("slice", "chart", "field", "arraytable.chart_type", "chart_type", chartType),
			"arraytable chart requires a chart_type in {bar, line, scatter}")
		return false
	}

	cellsRaw, present := mapGet(at, "content")
	cells, isSeq := asSlice(cellsRaw)
	if !present || !isSeq || len(cells) == 0 {
		v.acc.add(ctx("slice", "chart", "field", "arraytable.content"),
			"arraytable content must be a non-empty 2-D array")
		return false
	}
	for i, rowRaw := range cells {
		if _, isRow := asSlice(rowRaw); !isRow {
			v.acc.addf(ctx("slice", "chart", "field", "arraytable.content", "row", itoa(i)),
				"arraytable row %d must be a sequence", i)
			return false
		}
	}

	if stringsRaw, present := mapGet(at, "strings"); present {
		subs, isMap := asMap(stringsRaw)
		if !isMap {
			v.acc.add(ctx("slice", "chart", "field", "arraytable.strings"),
				"arraytable strings must be a mapping of localized substitutions")
			return false
		}
		for _, item := range subs {
			checkLocalized(item.Value, "arraytable.strings."+keyString(item.Key), &v.acc)
		}
	}

	return v.acc.empty()
}
