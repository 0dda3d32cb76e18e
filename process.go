package pboml

import (
	"fmt"
	"regexp"
	"strings"
)

// Slice processors convert validated raw nodes into canonical slice values.
// They run only after the matching validator accepted the node, so shape
// errors here indicate a processing bug and surface as ProcessingError.

// processSlice dispatches a validated node to its processor. The switch is
// exhaustive over the closed kind set.
func processSlice(kind SliceKind, node any) (Slice, error) {
	m, ok := asMap(node)
	if !ok {
		return nil, &ProcessingError{SliceType: kind, Stage: "decode",
			Err: fmt.Errorf("slice node is not a mapping")}
	}
	switch kind {
	case KindMarkdown:
		return processMarkdown(m)
	case KindHeading:
		return processHeading(m)
	case KindTable:
		return processTable(m)
	case KindChart:
		return processChart(m)
	case KindSVG:
		return processSVG(m)
	case KindBitmap:
		return processBitmap(m)
	case KindKVList:
		return processKVList(m)
	case KindHTML:
		return processHTML(m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSliceType, kind)
	}
}

// processAttrs extracts the shared slice attributes, applying defaults:
// display_label true, sources/notes/alts empty.
func processAttrs(m mapItems) SliceAttrs {
	attrs := SliceAttrs{DisplayLabel: true}

	if raw, ok := mapGet(m, "id"); ok {
		attrs.ID, _ = asText(raw)
	}
	attrs.Label = coerceLocalized(rawOf(m, "label"))
	attrs.ReferencedAs = coerceLocalized(rawOf(m, "referenced_as"))
	if raw, ok := mapGet(m, "display_label"); ok {
		if b, isBool := asBool(raw); isBool {
			attrs.DisplayLabel = b
		}
	}
	if raw, ok := mapGet(m, "presentation"); ok {
		attrs.Presentation, _ = asString(raw)
	}
	attrs.Sources = coerceLocalizedList(rawOf(m, "sources"))
	attrs.Notes = coerceLocalizedList(rawOf(m, "notes"))
	attrs.Alts = coerceLocalizedList(rawOf(m, "alts"))

	return attrs
}

func rawOf(m mapItems, key string) any {
	v, _ := mapGet(m, key)
	return v
}

// coerceLocalized reads an already-validated localized value. Plain strings
// are accepted as a uniform value across both locales.
func coerceLocalized(v any) LocalizedString {
	if v == nil {
		return nil
	}
	if s, ok := asString(v); ok {
		return uniformLocalized(s)
	}
	m, ok := asMap(v)
	if !ok {
		return nil
	}
	ls := make(LocalizedString, len(Locales))
	for _, loc := range Locales {
		if raw, present := mapGet(m, string(loc)); present {
			if s, isStr := asText(raw); isStr {
				ls[loc] = s
			}
		}
	}
	if len(ls) == 0 {
		return nil
	}
	return ls
}

func coerceLocalizedList(v any) []LocalizedString {
	entries, ok := asSlice(v)
	if !ok {
		return nil
	}
	out := make([]LocalizedString, 0, len(entries))
	for _, e := range entries {
		if ls := coerceLocalized(e); ls != nil {
			out = append(out, ls)
		}
	}
	return out
}

// decodeValue coerces one raw cell into a canonical Value.
func decodeValue(v any) Value {
	if v == nil {
		return Value{}
	}
	if n, ok := asFloat(v); ok {
		if _, isBool := v.(bool); !isBool {
			return Value{Present: true, IsNumber: true, Number: n}
		}
	}
	if s, ok := asText(v); ok {
		return Value{Present: true, Scalar: s}
	}
	if ls := coerceLocalized(v); ls != nil {
		return Value{Present: true, Localized: ls}
	}
	return Value{}
}

// ---------------------------------------------------------------------------
// Text slices
// ---------------------------------------------------------------------------

func processMarkdown(m mapItems) (Slice, error) {
	return &MarkdownSlice{
		SliceAttrs: processAttrs(m),
		Content:    coerceLocalized(rawOf(m, "content")),
	}, nil
}

func processHeading(m mapItems) (Slice, error) {
	level, _ := asInt(rawOf(m, "level"))
	return &HeadingSlice{
		SliceAttrs: processAttrs(m),
		Content:    coerceLocalized(rawOf(m, "content")),
		Level:      level,
	}, nil
}

func processHTML(m mapItems) (Slice, error) {
	s := &HTMLSlice{
		SliceAttrs: processAttrs(m),
		Content:    coerceLocalized(rawOf(m, "content")),
	}
	if raw, ok := mapGet(m, "css"); ok {
		s.CSS, _ = asString(raw)
	}
	if raw, ok := mapGet(m, "remove_default_styles"); ok {
		s.RemoveDefaultStyles, _ = asBool(raw)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Tabular slices
// ---------------------------------------------------------------------------

func processTable(m mapItems) (Slice, error) {
	variables, err := processVariables(rawOf(m, "variables"))
	if err != nil {
		return nil, &ProcessingError{SliceType: KindTable, Stage: "variables", Err: err}
	}
	rows, err := processRows(rawOf(m, "content"))
	if err != nil {
		return nil, &ProcessingError{SliceType: KindTable, Stage: "content", Err: err}
	}
	return &TableSlice{
		SliceAttrs: processAttrs(m),
		Variables:  variables,
		Rows:       rows,
	}, nil
}

// processVariables resolves each variable's localized label, unit, and group
// plus its behavioral flags, preserving declaration order.
func processVariables(v any) ([]TableVariable, error) {
	vars, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("variables node is not a mapping")
	}
	out := make([]TableVariable, 0, len(vars))
	for _, item := range vars {
		vm, ok := asMap(item.Value)
		if !ok {
			return nil, fmt.Errorf("variable %q is not a mapping", keyString(item.Key))
		}
		tv := TableVariable{
			Key:          keyString(item.Key),
			Label:        coerceLocalized(rawOf(vm, "label")),
			Unit:         coerceLocalized(rawOf(vm, "unit")),
			Group:        coerceLocalized(rawOf(vm, "group")),
			DisplayLabel: true,
		}
		if raw, ok := mapGet(vm, "type"); ok {
			t, _ := asString(raw)
			tv.Type = CellType(t)
		}
		if raw, ok := mapGet(vm, "chart_type"); ok {
			tv.ChartType, _ = asString(raw)
		}
		tv.Emphasize, _ = asBool(rawOf(vm, "emphasize"))
		tv.IsDescriptive, _ = asBool(rawOf(vm, "is_descriptive"))
		tv.IsTime, _ = asBool(rawOf(vm, "is_time"))
		tv.SkipChart, _ = asBool(rawOf(vm, "skip_chart"))
		tv.Readonly, _ = asBool(rawOf(vm, "readonly"))
		if raw, ok := mapGet(vm, "display_label"); ok {
			if b, isBool := asBool(raw); isBool {
				tv.DisplayLabel = b
			}
		}
		out = append(out, tv)
	}
	return out, nil
}

func processRows(v any) ([]TableRow, error) {
	rowsRaw, ok := asSlice(v)
	if !ok {
		return nil, fmt.Errorf("content node is not a sequence")
	}
	rows := make([]TableRow, 0, len(rowsRaw))
	for i, rowRaw := range rowsRaw {
		rm, ok := asMap(rowRaw)
		if !ok {
			return nil, fmt.Errorf("content row %d is not a mapping", i)
		}
		row := make(TableRow, len(rm))
		for _, item := range rm {
			row[keyString(item.Key)] = decodeValue(item.Value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func processChart(m mapItems) (Slice, error) {
	s := &ChartSlice{SliceAttrs: processAttrs(m)}

	if raw, ok := mapGet(m, "datatable"); ok {
		dt, isMap := asMap(raw)
		if !isMap {
			return nil, &ProcessingError{SliceType: KindChart, Stage: "datatable",
				Err: fmt.Errorf("datatable node is not a mapping")}
		}
		variables, err := processVariables(rawOf(dt, "variables"))
		if err != nil {
			return nil, &ProcessingError{SliceType: KindChart, Stage: "datatable", Err: err}
		}
		rows, err := processRows(rawOf(dt, "content"))
		if err != nil {
			return nil, &ProcessingError{SliceType: KindChart, Stage: "datatable", Err: err}
		}
		s.Datatable = &ChartDatatable{Variables: variables, Rows: rows}
		return s, nil
	}

	raw, _ := mapGet(m, "arraytable")
	at, isMap := asMap(raw)
	if !isMap {
		return nil, &ProcessingError{SliceType: KindChart, Stage: "arraytable",
			Err: fmt.Errorf("arraytable node is not a mapping")}
	}
	arr := &ChartArraytable{}
	arr.ChartType, _ = asString(rawOf(at, "chart_type"))

	cellsRaw, _ := asSlice(rawOf(at, "content"))
	arr.Cells = make([][]Value, 0, len(cellsRaw))
	for _, rowRaw := range cellsRaw {
		cells, _ := asSlice(rowRaw)
		row := make([]Value, 0, len(cells))
		for _, c := range cells {
			row = append(row, decodeValue(c))
		}
		arr.Cells = append(arr.Cells, row)
	}

	if subsRaw, ok := mapGet(at, "strings"); ok {
		subs, isMap := asMap(subsRaw)
		if isMap {
			arr.Strings = make(map[string]LocalizedString, len(subs))
			for _, item := range subs {
				if ls := coerceLocalized(item.Value); ls != nil {
					arr.Strings[keyString(item.Key)] = ls
				}
			}
		}
	}

	s.Arraytable = arr
	return s, nil
}

// ---------------------------------------------------------------------------
// Media slices
// ---------------------------------------------------------------------------

var (
	svgScriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	svgOnAttrPattern      = regexp.MustCompile(`(?i)\son\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	svgExternalXlink      = regexp.MustCompile(`(?i)\sxlink:href\s*=\s*("(?:[^"#][^"]*)?"|'(?:[^'#][^']*)?')`)
	svgOpenTagPattern     = regexp.MustCompile(`(?i)<svg\b[^>]*>`)
)

func processSVG(m mapItems) (Slice, error) {
	content := coerceLocalized(rawOf(m, "content"))
	sanitized := make(LocalizedString, len(content))
	for loc, markup := range content {
		sanitized[loc] = sanitizeSVG(markup)
	}
	return &SVGSlice{
		SliceAttrs: processAttrs(m),
		Content:    sanitized,
	}, nil
}

// sanitizeSVG strips script blocks, event handlers, and non-fragment
// xlink:href targets, and injects the SVG namespace when absent. Best-effort
// filtering; validation already rejected overtly dangerous content.
func sanitizeSVG(markup string) string {
	markup = svgScriptBlockPattern.ReplaceAllString(markup, "")
	markup = svgOnAttrPattern.ReplaceAllString(markup, "")
	markup = svgExternalXlink.ReplaceAllString(markup, "")

	if !strings.Contains(markup, "xmlns") {
		markup = svgOpenTagPattern.ReplaceAllStringFunc(markup, func(tag string) string {
			return strings.Replace(tag, "<svg", `<svg xmlns="http://www.w3.org/2000/svg"`, 1)
		})
	}
	return markup
}

func processBitmap(m mapItems) (Slice, error) {
	thumbsRaw, _ := mapGet(m, "thumbnails")
	thumbs, ok := asMap(thumbsRaw)
	if !ok {
		return nil, &ProcessingError{SliceType: KindBitmap, Stage: "thumbnails",
			Err: fmt.Errorf("thumbnails node is not a mapping")}
	}

	thumbnails := make(map[Locale]map[string]string, len(Locales))
	for _, loc := range Locales {
		localeRaw, _ := mapGet(thumbs, string(loc))
		localeThumbs, ok := asMap(localeRaw)
		if !ok {
			return nil, &ProcessingError{SliceType: KindBitmap, Stage: "thumbnails",
				Err: fmt.Errorf("thumbnails for locale %q are not a mapping", loc)}
		}
		set := make(map[string]string, len(localeThumbs))
		for _, item := range localeThumbs {
			if path, isStr := asString(item.Value); isStr {
				set[keyString(item.Key)] = path
			}
		}
		thumbnails[loc] = set
	}

	return &BitmapSlice{
		SliceAttrs: processAttrs(m),
		Content:    coerceLocalized(rawOf(m, "content")),
		Thumbnails: thumbnails,
	}, nil
}

func processKVList(m mapItems) (Slice, error) {
	protoRaw, _ := mapGet(m, "prototype")
	proto, ok := asMap(protoRaw)
	if !ok {
		return nil, &ProcessingError{SliceType: KindKVList, Stage: "prototype",
			Err: fmt.Errorf("prototype node is not a mapping")}
	}

	prototype := KVPrototype{}
	for _, side := range []string{"key", "value"} {
		fieldRaw, _ := mapGet(proto, side)
		fm, ok := asMap(fieldRaw)
		if !ok {
			return nil, &ProcessingError{SliceType: KindKVList, Stage: "prototype",
				Err: fmt.Errorf("prototype %q is not a mapping", side)}
		}
		typ, _ := asString(rawOf(fm, "type"))
		field := KVField{Type: CellType(typ), Label: coerceLocalized(rawOf(fm, "label"))}
		if side == "key" {
			prototype.Key = field
		} else {
			prototype.Value = field
		}
	}

	rowsRaw, _ := asSlice(rawOf(m, "content"))
	rows := make([]KVRow, 0, len(rowsRaw))
	for i, rowRaw := range rowsRaw {
		rm, ok := asMap(rowRaw)
		if !ok {
			return nil, &ProcessingError{SliceType: KindKVList, Stage: "content",
				Err: fmt.Errorf("row %d is not a mapping", i)}
		}
		row := KVRow{Key: kvSideContent(rawOf(rm, "key"))}

		valueRaw := rawOf(rm, "value")
		if values, isList := asSlice(valueRaw); isList {
			for _, entry := range values {
				if ls := kvSideContent(entry); ls != nil {
					row.Values = append(row.Values, ls)
				}
			}
		} else if ls := kvSideContent(valueRaw); ls != nil {
			row.Values = []LocalizedString{ls}
		}
		rows = append(rows, row)
	}

	return &KVListSlice{
		SliceAttrs: processAttrs(m),
		Prototype:  prototype,
		Rows:       rows,
	}, nil
}

func kvSideContent(v any) LocalizedString {
	m, ok := asMap(v)
	if !ok {
		return nil
	}
	return coerceLocalized(rawOf(m, "content"))
}
