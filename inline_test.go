package skills

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseStylesheet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		css  string
		want []StyleRule
	}{
		{
			name: "single rule",
			css:  "p { color: red; }",
			want: []StyleRule{{Selector: "p", Declarations: []Declaration{{"color", "red"}}}},
		},
		{
			name: "selector list splits into one rule each",
			css:  "h2, .lead { margin: 0 }",
			want: []StyleRule{
				{Selector: "h2", Declarations: []Declaration{{"margin", "0"}}},
				{Selector: ".lead", Declarations: []Declaration{{"margin", "0"}}},
			},
		},
		{
			name: "duplicate property keeps last value",
			css:  "p { color: red; color: blue }",
			want: []StyleRule{{Selector: "p", Declarations: []Declaration{{"color", "blue"}}}},
		},
		{
			name: "source order preserved",
			css:  ".a { color: red } .b { color: blue }",
			want: []StyleRule{
				{Selector: ".a", Declarations: []Declaration{{"color", "red"}}},
				{Selector: ".b", Declarations: []Declaration{{"color", "blue"}}},
			},
		},
		{
			name: "at-rule block skipped whole",
			css:  "@media (max-width: 600px) { p { color: red } } .x { margin: 0 }",
			want: []StyleRule{{Selector: ".x", Declarations: []Declaration{{"margin", "0"}}}},
		},
		{
			name: "comments stripped",
			css:  "/* heading */ h2 { /* inner */ color: red }",
			want: []StyleRule{{Selector: "h2", Declarations: []Declaration{{"color", "red"}}}},
		},
		{
			name: "malformed declarations dropped",
			css:  "p { color red; ; font-size: 15px }",
			want: []StyleRule{{Selector: "p", Declarations: []Declaration{{"font-size", "15px"}}}},
		},
		{
			name: "value colons kept after first split",
			css:  `.hero { background: url(https://example.com/x.png) }`,
			want: []StyleRule{{Selector: ".hero", Declarations: []Declaration{{"background", "url(https://example.com/x.png)"}}}},
		},
		{
			name: "empty body yields no rule",
			css:  "p { } .x { color: red }",
			want: []StyleRule{{Selector: ".x", Declarations: []Declaration{{"color", "red"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseStylesheet(tt.css)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStylesheet() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestApplyStylesheet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		css          string
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "tag selector",
			html:         "<p>hello</p>",
			css:          "p { color: red }",
			wantContains: []string{`<p style="color: red">hello</p>`},
		},
		{
			name:         "class selector matches token",
			html:         `<p class="bar foo baz">x</p>`,
			css:          ".foo { color: red }",
			wantContains: []string{`style="color: red"`},
		},
		{
			name:       "class selector must not match substring",
			html:       `<p class="foobar">x</p>`,
			css:        ".foo { color: red }",
			wantAbsent: []string{"style="},
		},
		{
			name:         "rule wins over existing inline style",
			html:         `<p style="color: blue; margin: 4px">x</p>`,
			css:          "p { color: red }",
			wantContains: []string{`style="color: red; margin: 4px"`},
		},
		{
			name:         "later rule wins",
			html:         `<p class="a b">x</p>`,
			css:          ".a { color: red } .b { color: blue }",
			wantContains: []string{"color: blue"},
			wantAbsent:   []string{"color: red"},
		},
		{
			name:       "structure tags never styled",
			html:       `<html><head><title>t</title></head><body><p>x</p></body></html>`,
			css:        "body { margin: 0 } html { padding: 0 } title { color: red }",
			wantAbsent: []string{"style="},
		},
		{
			name:       "universal selector skipped",
			html:       "<p>x</p><span>y</span>",
			css:        "* { margin: 0 }",
			wantAbsent: []string{"style="},
		},
		{
			name:       "compound and pseudo selectors skipped",
			html:       `<div class="a"><p>x</p></div>`,
			css:        "div p { color: red } p:hover { color: blue } [data-x] { margin: 0 }",
			wantAbsent: []string{"style="},
		},
		{
			name:         "self closing tag styled",
			html:         `<hr/>`,
			css:          "hr { border: none }",
			wantContains: []string{`<hr style="border: none"/>`},
		},
		{
			name:         "multiple matches all styled",
			html:         "<p>a</p><p>b</p>",
			css:          "p { color: red }",
			wantContains: []string{`<p style="color: red">a</p><p style="color: red">b</p>`},
		},
		{
			name:         "closing tags untouched",
			html:         "<p>a</p>",
			css:          "p { color: red }",
			wantContains: []string{"</p>"},
			wantAbsent:   []string{`</p style`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ApplyStylesheet(tt.html, ParseStylesheet(tt.css))
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("output should not contain %q:\n%s", absent, got)
				}
			}
		})
	}
}

func TestInlineStylesheet(t *testing.T) {
	t.Parallel()

	t.Run("strips style blocks and stylesheet links", func(t *testing.T) {
		t.Parallel()

		html := `<head><style>p { color: red }</style><link rel="stylesheet" href="a.css"><link rel="icon" href="i.png"></head><p>x</p>`
		got := InlineStylesheet(html, "p { color: red }")
		if strings.Contains(got, "<style") {
			t.Errorf("style block not stripped:\n%s", got)
		}
		if strings.Contains(got, "stylesheet") {
			t.Errorf("stylesheet link not stripped:\n%s", got)
		}
		if !strings.Contains(got, `rel="icon"`) {
			t.Errorf("non-stylesheet link should survive:\n%s", got)
		}
		if !strings.Contains(got, `<p style="color: red">x</p>`) {
			t.Errorf("rule not applied:\n%s", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		html := `<div class="wrap"><p style="margin: 2px">a</p>
			<p>b</p></div>`
		css := ".wrap { padding: 0 } p { color: red; margin: 0 }"

		once := InlineStylesheet(html, css)
		twice := InlineStylesheet(once, css)
		if once != twice {
			t.Errorf("second pass changed output:\nonce:  %s\ntwice: %s", once, twice)
		}
	})

	t.Run("normalizes whitespace", func(t *testing.T) {
		t.Parallel()

		got := InlineStylesheet("<p>a</p>\n\n  <p>spaced    text</p>", "")
		if got != "<p>a</p><p>spaced text</p>" {
			t.Errorf("normalized = %q", got)
		}
	})
}

func TestNormalizeWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"inter-tag gap", "<p>a</p>   <p>b</p>", "<p>a</p><p>b</p>"},
		{"newlines between tags", "<ul>\n<li>a</li>\n</ul>", "<ul><li>a</li></ul>"},
		{"space runs in text", "<p>a    b</p>", "<p>a b</p>"},
		{"tabs in text", "<p>a\t\tb</p>", "<p>a b</p>"},
		{"leading and trailing trimmed", "  <p>a</p>  ", "<p>a</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeWhitespace(tt.in); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
