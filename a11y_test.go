package pboml

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func enhance(page string) string {
	return enhanceAccessibility(page, LocaleEN, zap.NewNop())
}

// ---------------------------------------------------------------------------
// TestEnhanceAccessibility - Individual passes
// ---------------------------------------------------------------------------

func TestEnhanceAccessibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:  "heading gets an id",
			input: `<html><body><h2>Fiscal Outlook</h2></body></html>`,
			wantContains: []string{
				`<h2 id="heading-fiscal-outlook">`,
			},
		},
		{
			name:  "table gets role and hidden caption",
			input: `<html><body><table><tbody><tr><th>A</th><td>1</td></tr></tbody></table></body></html>`,
			wantContains: []string{
				`role="grid"`,
				`<caption class="sr-only">`,
				`scope="row"`,
			},
		},
		{
			name:  "header row th gets col scope",
			input: `<html><body><table><thead><tr><th>Year</th></tr></thead></table></body></html>`,
			wantContains: []string{
				`scope="col"`,
			},
		},
		{
			name:  "empty link labeled from title",
			input: `<html><body><a href="/x" title="Details"></a></body></html>`,
			wantContains: []string{
				`aria-label="Details"`,
			},
		},
		{
			name:  "new window hint appended",
			input: `<html><body><a href="/x" target="_blank">Report</a></body></html>`,
			wantContains: []string{
				"(opens in new window)",
				`rel="noopener"`,
			},
		},
		{
			name:  "required control gets aria equivalent",
			input: `<html><body><input name="email" required/></body></html>`,
			wantContains: []string{
				`aria-required="true"`,
				`aria-label="email"`,
			},
		},
		{
			name:  "image defaults",
			input: `<html><body><img src="/x.png"/></body></html>`,
			wantContains: []string{
				`alt=""`,
				`loading="lazy"`,
				`decoding="async"`,
				`role="presentation"`,
			},
		},
		{
			name:  "main landmark and skip link synthesized",
			input: `<html><body><p>content</p></body></html>`,
			wantContains: []string{
				`<main id="main-content">`,
				`href="#main-content"`,
				"Skip to main content",
			},
		},
		{
			name:  "aside tagged complementary",
			input: `<html><body><aside>side</aside></body></html>`,
			wantContains: []string{
				`role="complementary"`,
			},
		},
		{
			name:  "button gets default type",
			input: `<html><body><button>Go</button></body></html>`,
			wantContains: []string{
				`type="button"`,
			},
		},
		{
			name:  "menu items get roles",
			input: `<html><body><ul role="menu"><li>One</li></ul></body></html>`,
			wantContains: []string{
				`role="menuitem"`,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := enhance(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output does not contain %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestEnhanceAccessibility_DuplicateIDsRenamed(t *testing.T) {
	t.Parallel()

	got := enhance(`<html><body><p id="x">a</p><p id="x">b</p><p id="x">c</p></body></html>`)
	for _, want := range []string{`id="x"`, `id="x-2"`, `id="x-3"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestEnhanceAccessibility_Idempotent - Double enhancement is stable
// ---------------------------------------------------------------------------

func TestEnhanceAccessibility_Idempotent(t *testing.T) {
	t.Parallel()

	input := `<html><body>
<h2>Overview</h2>
<h3>Revenue</h3>
<table><tbody><tr><th>A</th><td><em>1</em></td></tr></tbody></table>
<a href="/r" target="_blank">Report</a>
<img src="/x.png" alt="A chart"/>
<aside>note</aside>
<button title="Close"></button>
</body></html>`

	once := enhance(input)
	twice := enhance(once)
	if once != twice {
		t.Errorf("enhancement not idempotent:\nfirst:  %s\nsecond: %s", once, twice)
	}
}

func TestEnhanceAccessibility_BadInputDegrades(t *testing.T) {
	t.Parallel()

	// The parser accepts almost anything, so enhancement should still
	// return usable output rather than failing.
	input := "<div><p>unclosed"
	got := enhance(input)
	if got == "" {
		t.Error("enhancement returned empty output")
	}
	if !strings.Contains(got, "unclosed") {
		t.Errorf("content lost: %s", got)
	}
}
