package skills

import "strings"

// frontmatterDelimiter opens and closes a header block: a line of exactly
// three hyphens.
const frontmatterDelimiter = "---"

// Frontmatter field aliases, checked in order.
var (
	digestKeys = []string{"digest", "summary", "description"}
	coverKeys  = []string{"cover", "coverImage", "featureImage", "image"}
)

// ParseFrontmatter splits raw text into a header map and the remaining body.
// The header block must start on the first line; when absent the whole input
// is body with an empty map. Inside the block, `key: value` lines become
// entries with wrapping quotes stripped from the value; blank lines, comment
// lines, and lines without a colon are dropped. Parsing never fails.
func ParseFrontmatter(text string) (map[string]string, string) {
	meta, body, _ := parseFrontmatter(text)
	return meta, body
}

// parseFrontmatter additionally reports the dropped header lines so callers
// with a diagnostic stream can surface them.
func parseFrontmatter(text string) (map[string]string, string, []string) {
	meta := map[string]string{}
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != frontmatterDelimiter {
		return meta, text, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontmatterDelimiter {
			end = i
			break
		}
	}
	// An unterminated block is not a block.
	if end == -1 {
		return meta, text, nil
	}

	var dropped []string
	for _, raw := range lines[1:end] {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			dropped = append(dropped, line)
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			dropped = append(dropped, line)
			continue
		}
		meta[key] = stripQuotes(strings.TrimSpace(value))
	}

	return meta, strings.Join(lines[end+1:], "\n"), dropped
}

// ParseDocument parses frontmatter and assembles a Document. Caller
// overrides win over frontmatter fields; digest and cover fall back through
// their alias lists in order.
func ParseDocument(markdown string, ov Overrides) Document {
	meta, body := ParseFrontmatter(markdown)
	return Document{
		Title:  firstNonEmpty(ov.Title, meta["title"]),
		Author: firstNonEmpty(ov.Author, meta["author"]),
		Digest: firstNonEmpty(ov.Digest, lookupAny(meta, digestKeys)),
		Cover:  firstNonEmpty(ov.Cover, lookupAny(meta, coverKeys)),
		Meta:   meta,
		Body:   body,
	}
}

// stripQuotes removes one matching pair of wrapping single or double quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// lookupAny returns the first non-empty value among keys, in order.
func lookupAny(meta map[string]string, keys []string) string {
	for _, k := range keys {
		if v := meta[k]; v != "" {
			return v
		}
	}
	return ""
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
