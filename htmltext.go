package skills

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var listItemPattern = regexp.MustCompile(`(?is)<li>(.*?)</li>`)

// ExtractText returns the collapsed text content of an HTML fragment.
func ExtractText(fragment string) string {
	return strings.Join(strings.Fields(renderText(fragment)), " ")
}

// DigestFromHTML derives a short plain-text summary from converted body
// HTML, truncated to the length the draft API accepts.
func DigestFromHTML(body string) string {
	text := ExtractText(body)
	runes := []rune(text)
	if len(runes) <= maxDigestRunes {
		return text
	}
	return string(runes[:maxDigestRunes])
}

// PostText renders blocks as plain text for a short-form post. Placeholder
// blocks are omitted: their images travel as attachments. Links keep their
// destination when it is not already the visible text.
func PostText(blocks []ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		switch block.Kind {
		case KindPlaceholder:
			continue
		case KindList:
			var lines []string
			for i, m := range listItemPattern.FindAllStringSubmatch(block.HTML, -1) {
				item := strings.Join(strings.Fields(renderText(m[1])), " ")
				if item == "" {
					continue
				}
				if block.Ordered {
					lines = append(lines, strconv.Itoa(i+1)+". "+item)
				} else {
					lines = append(lines, "- "+item)
				}
			}
			if len(lines) > 0 {
				parts = append(parts, strings.Join(lines, "\n"))
			}
		case KindBlockquote:
			text := strings.TrimSpace(renderText(block.HTML))
			if text == "" {
				continue
			}
			var lines []string
			for _, line := range strings.Split(text, "\n") {
				lines = append(lines, "> "+strings.TrimSpace(line))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		default:
			if text := ExtractText(block.HTML); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// renderText walks the fragment's nodes collecting text. Anchors append
// their destination in parentheses when it differs from the visible text;
// <br/> becomes a newline; script and style subtrees are dropped.
func renderText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var sb strings.Builder
	textifyNode(doc, &sb)
	return sb.String()
}

func textifyNode(n *html.Node, sb *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		sb.WriteString(n.Data)
		return
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
		return
	case n.Type == html.ElementNode && n.Data == "br":
		sb.WriteString("\n")
		return
	case n.Type == html.ElementNode && n.Data == "a":
		var inner strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			textifyNode(c, &inner)
		}
		text := strings.TrimSpace(inner.String())
		href := attrValue(n, "href")
		sb.WriteString(text)
		if href != "" && href != text {
			sb.WriteString(" (" + href + ")")
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textifyNode(c, sb)
	}
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// firstSentence cuts text at the first sentence-ending punctuation mark,
// capped at titleRuneCap runes, for generated default titles.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			return strings.TrimSpace(text[:i])
		}
	}
	if utf8.RuneCountInString(text) <= titleRuneCap {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:titleRuneCap]))
}
