// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
			),
		)
	})
	return markdownParserInstance
}

// renderMessageBody renders a message body as styled terminal text
// wrapped to width. Chat bodies are short and mostly plain, so only
// the inline styles, code, quotes, and lists people actually type are
// handled. Other constructs fall through as their text content.
func renderMessageBody(input string, theme Theme, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// The output always lands in the TUI, so skip terminal detection.
	// Without SetColorProfile lipgloss re-detects and strips color
	// when no TTY is attached.
	lipRenderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &bodyRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)
	renderer.flushBlock()

	return strings.TrimRight(strings.Join(renderer.lines, "\n"), "\n ")
}

// bodyRenderer accumulates inline content per block and wraps it when
// the block closes.
type bodyRenderer struct {
	source      []byte
	theme       Theme
	width       int
	lipRenderer *lipgloss.Renderer

	lines  []string
	inline strings.Builder

	// prefix is prepended to every wrapped line; bullet replaces it
	// for the first line of a list item. savedPrefixes restores the
	// enclosing prefix when a quote or list item closes.
	prefix        string
	bullet        string
	savedPrefixes []string

	bold          int
	italic        int
	strikethrough int

	// ordinals holds the next number for each open ordered list, or
	// -1 for bullet lists.
	ordinals []int
}

func (renderer *bodyRenderer) style() lipgloss.Style {
	return renderer.lipRenderer.NewStyle()
}

func (renderer *bodyRenderer) contentWidth() int {
	width := renderer.width - ansi.StringWidth(renderer.prefix)
	if width < 10 {
		width = 10
	}
	return width
}

func (renderer *bodyRenderer) styled(content string) string {
	style := renderer.style().Foreground(renderer.theme.NormalText)
	if renderer.bold > 0 {
		style = style.Bold(true)
	}
	if renderer.italic > 0 {
		style = style.Italic(true)
	}
	if renderer.strikethrough > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// emit appends lines, applying the pending bullet to the first and the
// current prefix to the rest.
func (renderer *bodyRenderer) emit(content string) {
	for _, line := range strings.Split(content, "\n") {
		prefix := renderer.prefix
		if renderer.bullet != "" {
			prefix = renderer.bullet
			renderer.bullet = ""
		}
		renderer.lines = append(renderer.lines, prefix+line)
	}
}

func (renderer *bodyRenderer) flushBlock() {
	content := renderer.inline.String()
	renderer.inline.Reset()
	if content == "" {
		return
	}
	renderer.emit(ansi.Wrap(content, renderer.contentWidth(), " ,.;-+|"))
}

func (renderer *bodyRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading:
		if !entering {
			if heading, ok := node.(*ast.Heading); ok {
				content := ansi.Strip(renderer.inline.String())
				renderer.inline.Reset()
				renderer.inline.WriteString(renderer.style().
					Bold(true).
					Foreground(renderer.theme.HeaderForeground).
					Render(strings.Repeat("#", heading.Level) + " " + content))
			}
			renderer.flushBlock()
		}

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			renderer.renderCode(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			renderer.pushPrefix("│ ")
		} else {
			renderer.flushBlock()
			renderer.popPrefix()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			ordinal := -1
			if list.IsOrdered() {
				ordinal = list.Start
			}
			renderer.ordinals = append(renderer.ordinals, ordinal)
		} else {
			renderer.ordinals = renderer.ordinals[:len(renderer.ordinals)-1]
		}

	case ast.KindListItem:
		if len(renderer.ordinals) == 0 {
			break
		}
		if entering {
			top := &renderer.ordinals[len(renderer.ordinals)-1]
			marker := "- "
			if *top >= 0 {
				marker = fmt.Sprintf("%d. ", *top)
				*top++
			}
			renderer.bullet = renderer.prefix + marker
			renderer.pushPrefix(strings.Repeat(" ", len(marker)))
		} else {
			renderer.flushBlock()
			renderer.popPrefix()
		}

	case ast.KindThematicBreak:
		if entering {
			rule := strings.Repeat("─", renderer.contentWidth())
			renderer.emit(renderer.style().Foreground(renderer.theme.BorderColor).Render(rule))
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			renderer.inline.WriteString(renderer.styled(string(textNode.Segment.Value(renderer.source))))
			if textNode.SoftLineBreak() {
				renderer.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				renderer.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			renderer.inline.WriteString(renderer.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		counter := &renderer.italic
		if node.(*ast.Emphasis).Level >= 2 {
			counter = &renderer.bold
		}
		if entering {
			*counter++
		} else {
			*counter--
		}

	case extast.KindStrikethrough:
		if entering {
			renderer.strikethrough++
		} else {
			renderer.strikethrough--
		}

	case ast.KindCodeSpan:
		if entering {
			var code strings.Builder
			for child := node.FirstChild(); child != nil; child = child.NextSibling() {
				if textNode, ok := child.(*ast.Text); ok {
					code.Write(textNode.Segment.Value(renderer.source))
				}
			}
			renderer.inline.WriteString(renderer.style().Foreground(renderer.theme.FaintText).Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if !entering {
			destination := string(node.(*ast.Link).Destination)
			if destination != "" {
				renderer.inline.WriteString(" " + renderer.style().
					Foreground(renderer.theme.FaintText).
					Render("("+destination+")"))
			}
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(renderer.source))
			renderer.inline.WriteString(renderer.style().
				Foreground(renderer.theme.SenderForeground).
				Underline(true).
				Render(url))
			return ast.WalkSkipChildren, nil
		}
	}

	return ast.WalkContinue, nil
}

func (renderer *bodyRenderer) pushPrefix(extra string) {
	renderer.savedPrefixes = append(renderer.savedPrefixes, renderer.prefix)
	renderer.prefix += extra
}

func (renderer *bodyRenderer) popPrefix() {
	if len(renderer.savedPrefixes) == 0 {
		return
	}
	renderer.prefix = renderer.savedPrefixes[len(renderer.savedPrefixes)-1]
	renderer.savedPrefixes = renderer.savedPrefixes[:len(renderer.savedPrefixes)-1]
}

func (renderer *bodyRenderer) renderCode(node ast.Node) {
	renderer.flushBlock()

	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(renderer.source))
	}

	var language string
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		language = string(fenced.Language(renderer.source))
	}
	source := strings.TrimRight(code.String(), "\n")
	renderer.emit(strings.TrimRight(renderer.highlight(source, language), "\n"))
}

// highlight runs chroma over code. Unknown languages and highlighter
// errors fall back to faint plain text.
func (renderer *bodyRenderer) highlight(code, language string) string {
	faint := renderer.style().Foreground(renderer.theme.FaintText)
	if language == "" {
		return faint.Render(code)
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err != nil {
		return faint.Render(code)
	}
	return buffer.String()
}
