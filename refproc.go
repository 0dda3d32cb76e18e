package pboml

import (
	"fmt"
	"regexp"
	"strings"
)

// The reference processor resolves inline footnote markers in rendered HTML.
// A marker [^N] becomes an anchor to the matching notes-section entry,
// carrying a back-reference id and an aria description link. Text between
// markers passes through verbatim. Markers naming unknown annotation ids
// still render a link; there is no existence check.

var referenceMarkerPattern = regexp.MustCompile(`\[\^([^\]\s]+)\]`)

// resolveReferences rewrites every [^N] marker in fragment.
func resolveReferences(fragment string) string {
	if !strings.Contains(fragment, "[^") {
		return fragment
	}
	return referenceMarkerPattern.ReplaceAllStringFunc(fragment, func(marker string) string {
		id := referenceMarkerPattern.FindStringSubmatch(marker)[1]
		return fmt.Sprintf(
			`<a href="#annotation-%s" id="ref-%s" aria-describedby="antn_%s" class="reference-marker">%s</a>`,
			id, id, id, id)
	})
}
