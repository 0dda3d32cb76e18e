package pboml

import (
	"fmt"
	"strings"
)

// The table renderer produces a pivot layout: one body row per variable, one
// column per content row, plus a leading label column. Variables sharing a
// group label merge into one grouping cell via rowspan; ungrouped variables
// sort before grouped ones.

// variableGroup is one run of adjacent rendered rows sharing a group label.
type variableGroup struct {
	label     string
	variables []TableVariable
}

// groupVariables partitions variables for loc: the ungrouped run first, then
// one group per distinct label in first-appearance order.
func groupVariables(variables []TableVariable, loc Locale) []variableGroup {
	var ungrouped variableGroup
	var groups []variableGroup
	index := map[string]int{}

	for _, v := range variables {
		label := v.Group.Get(loc)
		if label == "" {
			ungrouped.variables = append(ungrouped.variables, v)
			continue
		}
		i, seen := index[label]
		if !seen {
			index[label] = len(groups)
			groups = append(groups, variableGroup{label: label})
			i = len(groups) - 1
		}
		groups[i].variables = append(groups[i].variables, v)
	}

	if len(ungrouped.variables) > 0 {
		return append([]variableGroup{ungrouped}, groups...)
	}
	return groups
}

func (r *renderSet) renderTable(s *TableSlice) (string, error) {
	groups := groupVariables(s.Variables, r.loc)
	hasGroups := len(groups) > 1 || (len(groups) == 1 && groups[0].label != "")

	var b strings.Builder
	b.WriteString(`<div class="pboml-table-wrapper"><table role="grid">`)
	if label := s.Label.Get(r.loc); label != "" {
		b.WriteString(`<caption class="sr-only">` + escapeHTML(label) + `</caption>`)
	}
	b.WriteString(`<tbody>`)

	for _, group := range groups {
		for i, variable := range group.variables {
			classes := []string{"pboml-table-row"}
			if variable.Emphasize {
				classes = append(classes, "pboml-table-row-emphasized")
			}
			if variable.IsDescriptive {
				classes = append(classes, "pboml-table-row-descriptive")
			}
			fmt.Fprintf(&b, `<tr class=%q>`, strings.Join(classes, " "))

			if hasGroups && i == 0 {
				if group.label == "" {
					fmt.Fprintf(&b, `<td rowspan="%d" class="pboml-table-group pboml-table-group-empty"></td>`,
						len(group.variables))
				} else {
					fmt.Fprintf(&b, `<th rowspan="%d" scope="rowgroup" class="pboml-table-group">%s</th>`,
						len(group.variables), escapeHTML(group.label))
				}
			}

			b.WriteString(`<th scope="row">`)
			if variable.DisplayLabel {
				b.WriteString(escapeHTML(variable.Label.Get(r.loc)))
			}
			if unit := variable.Unit.Get(r.loc); unit != "" {
				b.WriteString(` <span class="pboml-table-unit" aria-hidden="true">` + escapeHTML(unit) + `</span>`)
			}
			b.WriteString(`</th>`)

			for _, row := range s.Rows {
				cell, err := r.tableCell(variable, row[variable.Key])
				if err != nil {
					return "", err
				}
				b.WriteString(`<td>` + cell + `</td>`)
			}

			b.WriteString(`</tr>`)
		}
	}

	b.WriteString(`</tbody></table></div>`)
	b.WriteString(r.textVersionBlock(s.Alts))

	return r.sliceSection(&s.SliceAttrs, KindTable, b.String()), nil
}

// tableCell formats one cell per the variable's declared type. Empty cells
// render a visually hidden marker, never an omitted cell.
func (r *renderSet) tableCell(variable TableVariable, v Value) (string, error) {
	if v.Empty(r.loc) {
		return `<span class="sr-only">` + r.ui("empty_cell") + `</span>`, nil
	}
	switch variable.Type {
	case CellNumber:
		if n, ok := v.AsNumber(); ok {
			return formatCellNumber(n), nil
		}
		return escapeHTML(v.Text(r.loc)), nil
	case CellMarkdown:
		rendered, err := convertInline(r.md, v.Text(r.loc))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(rendered), nil
	default:
		return escapeHTML(v.Text(r.loc)), nil
	}
}

// textVersionBlock renders the alternative-text entries of a tabular slice
// as a disclosure block.
func (r *renderSet) textVersionBlock(alts []LocalizedString) string {
	if len(alts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<details class="pboml-text-version"><summary>` + r.ui("text_version") + `</summary>`)
	for _, alt := range alts {
		text := alt.Get(r.loc)
		rendered, err := convertInline(r.md, text)
		if err != nil {
			rendered = escapeHTML(text)
		}
		b.WriteString(`<p>` + rendered + `</p>`)
	}
	b.WriteString(`</details>`)
	return b.String()
}
