package skills

import (
	"regexp"
	"strings"
)

// Declaration is one property/value pair of a style rule.
type Declaration struct {
	Property string
	Value    string
}

// StyleRule pairs a selector with its declarations. Supported selectors are
// a single class (".name") or a bare tag name; anything compound is skipped
// at application time. Source order carries precedence: a later rule wins on
// conflicting properties.
type StyleRule struct {
	Selector     string
	Declarations []Declaration
}

// Precompiled patterns for the string-based pseudo-DOM. The document is
// never parsed into a tree; tags are rewritten in place.
var (
	tagPattern       = regexp.MustCompile(`(?s)<([a-zA-Z][a-zA-Z0-9-]*)((?:"[^"]*"|'[^']*'|[^"'>])*)>`)
	classAttrPattern = regexp.MustCompile(`(?is)\bclass\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>]+))`)
	styleAttrPattern = regexp.MustCompile(`(?is)\bstyle\s*=\s*(?:"([^"]*)"|'([^']*)')`)

	styleBlockPattern = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	styleLinkPattern  = regexp.MustCompile(`(?i)<link\b[^>]*\brel\s*=\s*["']?stylesheet["']?[^>]*/?>`)
	cssCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

	interTagSpacePattern = regexp.MustCompile(`>\s+<`)
	spaceRunPattern      = regexp.MustCompile(` {2,}`)
)

// structureTags never receive visual inline styles. Doctype declarations are
// excluded implicitly: the tag pattern only matches named elements.
var structureTags = map[string]bool{
	"html": true, "head": true, "body": true, "meta": true,
	"link": true, "script": true, "style": true, "title": true,
}

// styleApplier rewrites a document's tags to carry computed inline styles.
// Behind this seam the string-based implementation can be swapped for a
// parser-backed one without touching callers.
type styleApplier interface {
	Apply(html string, rules []StyleRule) string
}

// regexApplier is the string-based pseudo-DOM implementation.
type regexApplier struct{}

// InlineStylesheet runs the full inlining transform: parse the stylesheet,
// strip style blocks and stylesheet links from the document, merge matching
// rules into each element's style attribute, and normalize whitespace.
// Applying the same stylesheet to the output changes nothing.
func InlineStylesheet(html, css string) string {
	rules := ParseStylesheet(css)
	html = StripStyles(html)
	html = ApplyStylesheet(html, rules)
	return NormalizeWhitespace(html)
}

// ParseStylesheet parses flat CSS text into ordered style rules. Selector
// lists split on commas into one rule each; declarations split on ";" then
// on the first ":"; duplicate properties within one rule keep the last
// value. At-rule blocks are skipped whole. Parsing never fails; malformed
// chunks are dropped.
func ParseStylesheet(css string) []StyleRule {
	css = cssCommentPattern.ReplaceAllString(css, "")

	var rules []StyleRule
	i := 0
	for i < len(css) {
		open := strings.IndexByte(css[i:], '{')
		if open < 0 {
			break
		}
		open += i
		selectors := strings.TrimSpace(css[i:open])

		depth := 1
		j := open + 1
		for j < len(css) && depth > 0 {
			switch css[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		body := css[open+1 : j]
		if depth == 0 {
			body = css[open+1 : j-1]
		}
		i = j

		if strings.HasPrefix(selectors, "@") {
			continue
		}
		decls := parseDeclarations(body)
		if len(decls) == 0 {
			continue
		}
		for _, sel := range strings.Split(selectors, ",") {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}
			rules = append(rules, StyleRule{Selector: sel, Declarations: decls})
		}
	}
	return rules
}

// StripStyles removes <style> blocks and stylesheet <link> tags; their
// effect is captured in inline attributes by ApplyStylesheet.
func StripStyles(html string) string {
	html = styleBlockPattern.ReplaceAllString(html, "")
	return styleLinkPattern.ReplaceAllString(html, "")
}

// ApplyStylesheet merges each rule's declarations into every matching tag's
// style attribute, in stylesheet order.
func ApplyStylesheet(html string, rules []StyleRule) string {
	return regexApplier{}.Apply(html, rules)
}

func (regexApplier) Apply(html string, rules []StyleRule) string {
	for _, rule := range rules {
		html = applyRule(html, rule)
	}
	return html
}

// unsupportedSelector reports selectors outside the supported subset: the
// universal selector and anything compound, attribute, or pseudo (detected
// by space, colon, or bracket).
func unsupportedSelector(sel string) bool {
	return sel == "" || sel == "*" || strings.ContainsAny(sel, " :[")
}

func applyRule(html string, rule StyleRule) string {
	sel := rule.Selector
	if unsupportedSelector(sel) || len(rule.Declarations) == 0 {
		return html
	}
	class, isClass := strings.CutPrefix(sel, ".")
	if isClass && class == "" {
		return html
	}

	return tagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		m := tagPattern.FindStringSubmatch(tag)
		name, attrs := strings.ToLower(m[1]), m[2]
		if isClass {
			if !hasClassToken(attrs, class) {
				return tag
			}
		} else {
			if structureTags[name] || !strings.EqualFold(name, sel) {
				return tag
			}
		}
		return mergeInlineStyle(tag, rule.Declarations)
	})
}

// hasClassToken reports whether the class attribute's whitespace-separated
// token list contains class. A rule for ".foo" must not match "foobar".
func hasClassToken(attrs, class string) bool {
	m := classAttrPattern.FindStringSubmatch(attrs)
	if m == nil {
		return false
	}
	value := m[1] + m[2] + m[3] // exactly one alternative is non-empty
	for _, token := range strings.Fields(value) {
		if token == class {
			return true
		}
	}
	return false
}

// mergeInlineStyle overlays decls onto the tag's existing style attribute,
// rule values winning on conflict, and writes the attribute back.
func mergeInlineStyle(tag string, decls []Declaration) string {
	if loc := styleAttrPattern.FindStringSubmatchIndex(tag); loc != nil {
		start, end := loc[2], loc[3]
		if start < 0 {
			start, end = loc[4], loc[5]
		}
		merged := serializeDeclarations(overlayDeclarations(parseDeclarations(tag[start:end]), decls))
		merged = strings.ReplaceAll(merged, `"`, `'`)
		return tag[:start] + merged + tag[end:]
	}

	attr := ` style="` + strings.ReplaceAll(serializeDeclarations(decls), `"`, `'`) + `"`
	if strings.HasSuffix(tag, "/>") {
		return tag[:len(tag)-2] + attr + "/>"
	}
	return tag[:len(tag)-1] + attr + ">"
}

// parseDeclarations parses a declaration body ("color: red; margin: 0")
// into ordered pairs, last write winning on duplicate properties.
func parseDeclarations(body string) []Declaration {
	var decls []Declaration
	seen := map[string]int{}
	for _, part := range strings.Split(body, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop, value = strings.TrimSpace(prop), strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		if at, dup := seen[prop]; dup {
			decls[at].Value = value
			continue
		}
		seen[prop] = len(decls)
		decls = append(decls, Declaration{Property: prop, Value: value})
	}
	return decls
}

// overlayDeclarations merges over onto base, preserving base order for
// properties both declare and appending new ones. Values from over win.
func overlayDeclarations(base, over []Declaration) []Declaration {
	out := make([]Declaration, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.Property] = i
	}
	for _, d := range over {
		if at, ok := index[d.Property]; ok {
			out[at].Value = d.Value
			continue
		}
		index[d.Property] = len(out)
		out = append(out, d)
	}
	return out
}

func serializeDeclarations(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.Property + ": " + d.Value
	}
	return strings.Join(parts, "; ")
}

// NormalizeWhitespace collapses inter-tag whitespace and runs of spaces.
// The destination renderer turns literal whitespace between tags into
// visible non-breaking spaces.
func NormalizeWhitespace(html string) string {
	html = interTagSpacePattern.ReplaceAllString(html, "><")
	html = strings.ReplaceAll(html, "\n", " ")
	html = strings.ReplaceAll(html, "\t", " ")
	html = spaceRunPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(html)
}
