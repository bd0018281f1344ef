package skills

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// placeholderFormat is the token emitted in place of inline images; n starts
// at 1 and increases in document order.
const placeholderFormat = "[[IMAGE_PLACEHOLDER_%d]]"

// defaultTitle is the last resort when no title source yields anything.
const defaultTitle = "Untitled"

// titleRuneCap bounds generated default titles.
const titleRuneCap = 64

// docConverter turns a parsed document into ordered blocks plus an image
// manifest.
type docConverter interface {
	Convert(ctx context.Context, doc Document) (*Conversion, error)
}

// goldmarkConverter implements docConverter by walking the goldmark AST.
// The built-in renderer is never used: block layout, placeholder emission,
// and the platform downgrades are all decided here.
type goldmarkConverter struct {
	md goldmark.Markdown
}

func newGoldmarkConverter() *goldmarkConverter {
	return &goldmarkConverter{md: goldmark.New()}
}

// ConvertDocument converts a document body into blocks, an image manifest,
// and the concatenated body HTML, resolving the title along the way.
func ConvertDocument(ctx context.Context, doc Document) (*Conversion, error) {
	return newGoldmarkConverter().Convert(ctx, doc)
}

func (c *goldmarkConverter) Convert(ctx context.Context, doc Document) (*Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Body) == "" {
		return nil, ErrEmptyDocument
	}

	source := []byte(doc.Body)
	root := c.md.Parser().Parse(text.NewReader(source))

	b := &blockBuilder{source: source}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		b.visitBlock(node)
	}

	conv := &Conversion{
		Title:  b.resolveTitle(doc),
		Blocks: b.blocks,
		Images: b.images,
	}
	conv.HTML = BuildHTML(conv.Blocks)
	return conv, nil
}

// BuildHTML renders blocks to the final body HTML. Block HTML fields hold
// inner content; the wrapper element comes from the kind.
func BuildHTML(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch block.Kind {
		case KindHeading:
			fmt.Fprintf(&sb, "<h%d>%s</h%d>", block.Level, block.HTML, block.Level)
		case KindList:
			tag := "ul"
			if block.Ordered {
				tag = "ol"
			}
			fmt.Fprintf(&sb, "<%s>%s</%s>", tag, block.HTML, tag)
		case KindBlockquote:
			fmt.Fprintf(&sb, "<blockquote>%s</blockquote>", block.HTML)
		case KindRawHTML:
			sb.WriteString(block.HTML)
		default:
			fmt.Fprintf(&sb, "<p>%s</p>", block.HTML)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// blockBuilder accumulates blocks and image references while walking the
// AST. Image references created inside composite blocks (lists, quotes)
// point at the composite's index.
type blockBuilder struct {
	source    []byte
	blocks    []ContentBlock
	images    []ImageReference
	bodyTitle string
	titleSeen bool
}

func (b *blockBuilder) emit(block ContentBlock) int {
	block.Index = len(b.blocks)
	b.blocks = append(b.blocks, block)
	return block.Index
}

// registerImage allocates the next placeholder token for src and records the
// manifest entry against blockIndex.
func (b *blockBuilder) registerImage(src string, blockIndex int) string {
	token := fmt.Sprintf(placeholderFormat, len(b.images)+1)
	b.images = append(b.images, ImageReference{
		Placeholder: token,
		SourceURI:   src,
		BlockIndex:  blockIndex,
	})
	return token
}

func (b *blockBuilder) visitBlock(node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		level := n.Level
		if level == 1 {
			// The first level-1 heading becomes the title candidate and is
			// excluded from body output; later ones demote to level 2.
			if !b.titleSeen {
				b.titleSeen = true
				b.bodyTitle = b.nodeText(n)
				return
			}
			level = 2
		}
		index := len(b.blocks)
		b.emit(ContentBlock{Kind: KindHeading, Level: level, HTML: b.renderChildren(n, index)})

	case *ast.Paragraph:
		b.visitParagraph(n)

	case *ast.List:
		index := len(b.blocks)
		b.emit(ContentBlock{
			Kind:    KindList,
			Ordered: n.IsOrdered(),
			HTML:    b.renderListItems(n, index),
		})

	case *ast.Blockquote:
		index := len(b.blocks)
		b.emit(ContentBlock{Kind: KindBlockquote, HTML: b.renderQuoteInner(n, index)})

	case *ast.FencedCodeBlock:
		// The destination platforms have no code block support; a quote
		// keeps the content visible without pretending otherwise.
		b.emit(ContentBlock{Kind: KindBlockquote, HTML: b.renderCodeLines(n)})

	case *ast.CodeBlock:
		b.emit(ContentBlock{Kind: KindBlockquote, HTML: b.renderCodeLines(n)})

	case *ast.ThematicBreak:
		b.emit(ContentBlock{Kind: KindRawHTML, HTML: "<hr/>"})

	case *ast.HTMLBlock:
		content := b.rawLines(n)
		if n.HasClosure() {
			closure := strings.TrimRight(string(n.ClosureLine.Value(b.source)), "\n")
			if closure != "" {
				content += "\n" + closure
			}
		}
		b.emit(ContentBlock{Kind: KindRawHTML, HTML: content})

	default:
		if content := strings.TrimSpace(html.EscapeString(b.nodeText(node))); content != "" {
			b.emit(ContentBlock{Kind: KindParagraph, HTML: content})
		}
	}
}

// visitParagraph splits a paragraph around its images: text runs become
// paragraph blocks, each image becomes its own placeholder block, in source
// order.
func (b *blockBuilder) visitParagraph(n *ast.Paragraph) {
	var run []ast.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		index := len(b.blocks)
		var sb strings.Builder
		for _, inline := range run {
			sb.WriteString(b.renderInline(inline, index))
		}
		run = nil
		if content := strings.TrimSpace(sb.String()); content != "" {
			b.emit(ContentBlock{Kind: KindParagraph, HTML: content})
		}
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if img, ok := child.(*ast.Image); ok {
			flush()
			index := len(b.blocks)
			token := b.registerImage(string(img.Destination), index)
			b.emit(ContentBlock{Kind: KindPlaceholder, HTML: token})
			continue
		}
		run = append(run, child)
	}
	flush()
}

// renderInline renders one inline node to HTML. Images reached here live
// inside composite content and render as inline placeholder tokens.
func (b *blockBuilder) renderInline(node ast.Node, blockIndex int) string {
	switch n := node.(type) {
	case *ast.Text:
		s := html.EscapeString(string(n.Segment.Value(b.source)))
		if n.HardLineBreak() {
			return s + "<br/>"
		}
		if n.SoftLineBreak() {
			return s + " "
		}
		return s
	case *ast.String:
		return html.EscapeString(string(n.Value))
	case *ast.Emphasis:
		inner := b.renderChildren(n, blockIndex)
		if n.Level >= 2 {
			return "<strong>" + inner + "</strong>"
		}
		return "<em>" + inner + "</em>"
	case *ast.CodeSpan:
		return "<code>" + html.EscapeString(b.nodeText(n)) + "</code>"
	case *ast.Link:
		// href is written exactly as authored; only the text is escaped.
		return `<a href="` + string(n.Destination) + `">` + b.renderChildren(n, blockIndex) + "</a>"
	case *ast.AutoLink:
		url := string(n.URL(b.source))
		return `<a href="` + url + `">` + html.EscapeString(string(n.Label(b.source))) + "</a>"
	case *ast.Image:
		return b.registerImage(string(n.Destination), blockIndex)
	case *ast.RawHTML:
		return b.rawSegments(n.Segments)
	default:
		return b.renderChildren(n, blockIndex)
	}
}

func (b *blockBuilder) renderChildren(node ast.Node, blockIndex int) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		sb.WriteString(b.renderInline(child, blockIndex))
	}
	return sb.String()
}

// renderListItems renders <li> elements; nested lists recurse inline.
func (b *blockBuilder) renderListItems(list *ast.List, blockIndex int) string {
	var sb strings.Builder
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		sb.WriteString("<li>")
		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.List:
				tag := "ul"
				if c.IsOrdered() {
					tag = "ol"
				}
				sb.WriteString("<" + tag + ">" + b.renderListItems(c, blockIndex) + "</" + tag + ">")
			default:
				if !first {
					sb.WriteString("<br/>")
				}
				sb.WriteString(b.renderChildren(child, blockIndex))
			}
			first = false
		}
		sb.WriteString("</li>")
	}
	return sb.String()
}

// renderQuoteInner flattens a blockquote's children into <br/>-joined
// content.
func (b *blockBuilder) renderQuoteInner(node ast.Node, blockIndex int) string {
	var parts []string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Blockquote:
			parts = append(parts, b.renderQuoteInner(c, blockIndex))
		case *ast.List:
			tag := "ul"
			if c.IsOrdered() {
				tag = "ol"
			}
			parts = append(parts, "<"+tag+">"+b.renderListItems(c, blockIndex)+"</"+tag+">")
		case *ast.FencedCodeBlock:
			parts = append(parts, b.renderCodeLines(c))
		case *ast.CodeBlock:
			parts = append(parts, b.renderCodeLines(c))
		default:
			parts = append(parts, b.renderChildren(child, blockIndex))
		}
	}
	return strings.Join(parts, "<br/>")
}

// renderCodeLines escapes code content line by line.
func (b *blockBuilder) renderCodeLines(node ast.Node) string {
	lines := node.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		line := strings.TrimRight(string(segment.Value(b.source)), "\n")
		parts = append(parts, html.EscapeString(line))
	}
	return strings.Join(parts, "<br/>")
}

// rawLines returns a block node's source lines verbatim.
func (b *blockBuilder) rawLines(node ast.Node) string {
	lines := node.Lines()
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(b.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *blockBuilder) rawSegments(segments *text.Segments) string {
	var sb strings.Builder
	for i := 0; i < segments.Len(); i++ {
		sb.Write(segments.At(i).Value(b.source))
	}
	return sb.String()
}

// nodeText collects the plain text under a node.
func (b *blockBuilder) nodeText(node ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(b.source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// resolveTitle applies the precedence chain: caller override and frontmatter
// arrive merged in doc.Title, then the consumed body heading, then a default
// generated from the first block's text.
func (b *blockBuilder) resolveTitle(doc Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	if b.bodyTitle != "" {
		return b.bodyTitle
	}
	for _, block := range b.blocks {
		if block.Kind != KindParagraph && block.Kind != KindHeading {
			continue
		}
		if title := firstSentence(ExtractText(block.HTML)); title != "" {
			return title
		}
	}
	return defaultTitle
}
