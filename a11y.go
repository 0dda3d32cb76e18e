package pboml

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The accessibility enhancer runs eight passes over the parsed page tree,
// each idempotent on an already-conformant tree. Enhancement is best-effort:
// every internal failure degrades to the unenhanced input and logs a
// warning. This is the only layer permitted to swallow errors.

// a11yHints are the localized texts the enhancer injects.
var a11yHints = map[string]LocalizedString{
	"new_window": {LocaleEN: " (opens in new window)", LocaleFR: " (s'ouvre dans une nouvelle fenêtre)"},
	"download":   {LocaleEN: " (download)", LocaleFR: " (téléchargement)"},
	"table":      {LocaleEN: "Table", LocaleFR: "Tableau"},
}

type enhancer struct {
	loc    Locale
	logger *zap.Logger

	headingLevels []int
}

// enhanceAccessibility runs the full pass sequence over a rendered page and
// returns the enhanced markup, or the input unchanged when anything fails.
func enhanceAccessibility(page string, loc Locale, logger *zap.Logger) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		logger.Warn("accessibility enhancement skipped: parse failed",
			zap.String("locale", string(loc)), zap.Error(err))
		return page
	}

	e := &enhancer{loc: loc, logger: logger}
	e.enhanceHeadings(doc)
	e.enhanceTables(doc)
	e.enhanceLinks(doc)
	e.enhanceForms(doc)
	e.enhanceImages(doc)
	e.enhanceLandmarks(doc)
	e.enhanceWidgets(doc)
	e.validateStructure(doc)

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		logger.Warn("accessibility enhancement skipped: render failed",
			zap.String("locale", string(loc)), zap.Error(err))
		return page
	}
	return buf.String()
}

func (e *enhancer) hint(key string) string { return a11yHints[key].Get(e.loc) }

// ---------------------------------------------------------------------------
// Tree helpers
// ---------------------------------------------------------------------------

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// setAttrIfAbsent leaves existing values untouched, keeping passes
// idempotent.
func setAttrIfAbsent(n *html.Node, key, val string) {
	if _, ok := getAttr(n, key); !ok {
		setAttr(n, key, val)
	}
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func isElement(n *html.Node, name string) bool {
	return n.Type == html.ElementNode && n.Data == name
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return strings.TrimSpace(b.String())
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, name string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) {
		if found == nil && isElement(c, name) {
			found = c
		}
	})
	return found
}

func newElement(a atom.Atom, name string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: name, Attr: attrs}
}

func newText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

var headingLevelByTag = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// ---------------------------------------------------------------------------
// Pass 1: headings
// ---------------------------------------------------------------------------

// enhanceHeadings assigns missing heading ids from the heading text and
// records the level sequence for the structure check.
func (e *enhancer) enhanceHeadings(doc *html.Node) {
	e.headingLevels = e.headingLevels[:0]
	walk(doc, func(n *html.Node) {
		level, isHeading := levelOf(n)
		if !isHeading {
			return
		}
		e.headingLevels = append(e.headingLevels, level)
		if _, ok := getAttr(n, "id"); !ok {
			if text := textContent(n); text != "" {
				setAttr(n, "id", headingAnchorID(text))
			}
		}
	})

	for i := 1; i < len(e.headingLevels); i++ {
		if e.headingLevels[i] > e.headingLevels[i-1]+1 {
			e.logger.Warn("heading level skipped",
				zap.String("locale", string(e.loc)),
				zap.Int("from", e.headingLevels[i-1]),
				zap.Int("to", e.headingLevels[i]))
		}
	}
}

func levelOf(n *html.Node) (int, bool) {
	if n.Type != html.ElementNode {
		return 0, false
	}
	level, ok := headingLevelByTag[n.Data]
	return level, ok
}

// ---------------------------------------------------------------------------
// Pass 2: tables
// ---------------------------------------------------------------------------

func (e *enhancer) enhanceTables(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if !isElement(n, "table") {
			return
		}
		setAttrIfAbsent(n, "role", "grid")

		if findFirst(n, "caption") == nil {
			caption := newElement(atom.Caption, "caption",
				html.Attribute{Key: "class", Val: "sr-only"})
			label, _ := getAttr(n, "aria-label")
			if label == "" {
				label = e.hint("table")
			}
			caption.AppendChild(newText(label))
			n.InsertBefore(caption, n.FirstChild)
		}

		walk(n, func(cell *html.Node) {
			switch {
			case isElement(cell, "th"):
				setAttrIfAbsent(cell, "scope", headerScope(cell))
			case isElement(cell, "td"):
				if hasElementChild(cell) {
					if text := textContent(cell); text != "" {
						setAttrIfAbsent(cell, "aria-label", text)
					}
				}
			}
		})
	})
}

// headerScope is col when the header sits in a header row, row otherwise.
func headerScope(th *html.Node) string {
	row := th.Parent
	if row == nil {
		return "row"
	}
	if row.Parent != nil && isElement(row.Parent, "thead") {
		return "col"
	}
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data != "th" {
			return "row"
		}
	}
	return "col"
}

// ---------------------------------------------------------------------------
// Pass 3: links
// ---------------------------------------------------------------------------

func (e *enhancer) enhanceLinks(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if !isElement(n, "a") {
			return
		}

		if textContent(n) == "" {
			if title, ok := getAttr(n, "title"); ok && title != "" {
				setAttrIfAbsent(n, "aria-label", title)
			}
		}

		if target, ok := getAttr(n, "target"); ok && target == "_blank" {
			e.appendHint(n, "new_window")
			setAttrIfAbsent(n, "rel", "noopener")
		}
		if _, ok := getAttr(n, "download"); ok {
			e.appendHint(n, "download")
		}

		if tabindex, ok := getAttr(n, "tabindex"); ok && strings.HasPrefix(tabindex, "-") {
			removeAttr(n, "tabindex")
		}
	})
}

// appendHint adds a screen-reader hint span once.
func (e *enhancer) appendHint(n *html.Node, key string) {
	marker := "a11y-hint-" + key
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if class, _ := getAttr(c, "class"); strings.Contains(class, marker) {
				return
			}
		}
	}
	span := newElement(atom.Span, "span",
		html.Attribute{Key: "class", Val: "sr-only " + marker})
	span.AppendChild(newText(e.hint(key)))
	n.AppendChild(span)
}

// ---------------------------------------------------------------------------
// Pass 4: forms and controls
// ---------------------------------------------------------------------------

var formControls = map[string]bool{"input": true, "select": true, "textarea": true}

func (e *enhancer) enhanceForms(doc *html.Node) {
	labeled := map[string]bool{}
	walk(doc, func(n *html.Node) {
		if isElement(n, "label") {
			if forID, ok := getAttr(n, "for"); ok {
				labeled[forID] = true
			}
		}
	})

	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || !formControls[n.Data] {
			return
		}
		if typ, _ := getAttr(n, "type"); typ == "hidden" {
			return
		}

		id, _ := getAttr(n, "id")
		if _, hasLabel := getAttr(n, "aria-label"); !hasLabel && !labeled[id] {
			if _, labelledBy := getAttr(n, "aria-labelledby"); !labelledBy {
				name := synthesizedControlLabel(n)
				if name != "" {
					setAttr(n, "aria-label", name)
				}
			}
		}

		if _, ok := getAttr(n, "required"); ok {
			setAttrIfAbsent(n, "aria-required", "true")
		}
		if _, ok := getAttr(n, "invalid"); ok {
			setAttrIfAbsent(n, "aria-invalid", "true")
		}
	})
}

func synthesizedControlLabel(n *html.Node) string {
	for _, key := range []string{"placeholder", "name", "title"} {
		if val, ok := getAttr(n, key); ok && val != "" {
			return val
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Pass 5: images
// ---------------------------------------------------------------------------

func (e *enhancer) enhanceImages(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if !isElement(n, "img") {
			return
		}
		alt, hasAlt := getAttr(n, "alt")
		if !hasAlt {
			setAttr(n, "alt", "")
			alt = ""
		}
		setAttrIfAbsent(n, "loading", "lazy")
		setAttrIfAbsent(n, "decoding", "async")
		if alt == "" {
			setAttrIfAbsent(n, "role", "presentation")
		}
	})
}

// ---------------------------------------------------------------------------
// Pass 6: landmarks
// ---------------------------------------------------------------------------

func (e *enhancer) enhanceLandmarks(doc *html.Node) {
	body := findFirst(doc, "body")
	if body == nil {
		return
	}

	if findFirst(body, "main") == nil {
		main := newElement(atom.Main, "main", html.Attribute{Key: "id", Val: "main-content"})
		for body.FirstChild != nil {
			child := body.FirstChild
			body.RemoveChild(child)
			main.AppendChild(child)
		}
		body.AppendChild(main)
	}

	e.wrapPrimaryNav(body)

	walk(body, func(n *html.Node) {
		if isElement(n, "aside") {
			setAttrIfAbsent(n, "role", "complementary")
		}
	})

	if !hasSkipLink(body) {
		skip := newElement(atom.A, "a",
			html.Attribute{Key: "href", Val: "#main-content"},
			html.Attribute{Key: "class", Val: "pboml-skip-link"})
		skip.AppendChild(newText(uiStrings["skip_content"].Get(e.loc)))
		body.InsertBefore(skip, body.FirstChild)
	}
}

func hasSkipLink(body *html.Node) bool {
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, "a") {
			if class, _ := getAttr(c, "class"); strings.Contains(class, "pboml-skip-link") {
				return true
			}
		}
	}
	return false
}

// wrapPrimaryNav wraps the first list marked as navigation in a nav
// landmark.
func (e *enhancer) wrapPrimaryNav(body *html.Node) {
	var navList *html.Node
	walk(body, func(n *html.Node) {
		if navList != nil || n.Type != html.ElementNode {
			return
		}
		if n.Data != "ul" && n.Data != "ol" {
			return
		}
		class, _ := getAttr(n, "class")
		if strings.Contains(class, "nav") && !insideNav(n) {
			navList = n
		}
	})
	if navList == nil {
		return
	}

	nav := newElement(atom.Nav, "nav")
	navList.Parent.InsertBefore(nav, navList)
	navList.Parent.RemoveChild(navList)
	nav.AppendChild(navList)
}

func insideNav(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, "nav") {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Pass 7: interactive widgets
// ---------------------------------------------------------------------------

func (e *enhancer) enhanceWidgets(doc *html.Node) {
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "button":
			setAttrIfAbsent(n, "type", "button")
			if textContent(n) == "" {
				if title, ok := getAttr(n, "title"); ok && title != "" {
					setAttrIfAbsent(n, "aria-label", title)
				}
			}
		}

		role, _ := getAttr(n, "role")
		switch role {
		case "dialog":
			setAttrIfAbsent(n, "aria-modal", "true")
		case "tabpanel":
			setAttrIfAbsent(n, "tabindex", "0")
		case "menu":
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if isElement(c, "li") {
					setAttrIfAbsent(c, "role", "menuitem")
				}
			}
		}
	})
}

// ---------------------------------------------------------------------------
// Pass 8: structure validation
// ---------------------------------------------------------------------------

// validateStructure re-checks heading hierarchy and landmark presence, and
// deterministically renames duplicate ids. Findings are warnings only.
func (e *enhancer) validateStructure(doc *html.Node) {
	for i := 1; i < len(e.headingLevels); i++ {
		if e.headingLevels[i] > e.headingLevels[i-1]+1 {
			e.logger.Warn("heading hierarchy still skips a level",
				zap.String("locale", string(e.loc)),
				zap.Int("position", i))
		}
	}

	if findFirst(doc, "main") == nil {
		e.logger.Warn("document has no main landmark", zap.String("locale", string(e.loc)))
	}

	seen := map[string]int{}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		id, ok := getAttr(n, "id")
		if !ok || id == "" {
			return
		}
		seen[id]++
		if seen[id] > 1 {
			renamed := fmt.Sprintf("%s-%d", id, seen[id])
			setAttr(n, "id", renamed)
			e.logger.Warn("duplicate id renamed",
				zap.String("locale", string(e.loc)),
				zap.String("id", id),
				zap.String("renamed", renamed))
		}
	})
}
