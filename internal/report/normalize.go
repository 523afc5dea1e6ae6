package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockListItem
	blockRow
	blockRule
	blockPageBreak
)

// block is one vertical unit of the report. inline holds markup restricted to
// the tags gofpdf's basic HTML writer understands: b, i, u, a and br.
type block struct {
	kind   blockKind
	level  int
	class  string
	inline string
	cells  []string
	header bool
}

// normalize flattens rendered report HTML into blocks the PDF renderer can lay out.
func normalize(r io.Reader) ([]block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing report html: %w", err)
	}

	var out []block
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(collapse(n.Data)); t != "" {
				out = append(out, block{kind: blockParagraph, inline: escapeText(t)})
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style, atom.Title:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4:
				out = append(out, block{kind: blockHeading, level: int(n.Data[1] - '0'), inline: inline(n)})
				return
			case atom.P:
				if s := inline(n); s != "" {
					out = append(out, block{kind: blockParagraph, class: attr(n, "class"), inline: s})
				}
				return
			case atom.Li:
				if s := inline(n); s != "" {
					out = append(out, block{kind: blockListItem, inline: s})
				}
				return
			case atom.Tr:
				if b, ok := row(n); ok {
					out = append(out, b)
				}
				return
			case atom.Hr:
				out = append(out, block{kind: blockRule})
				return
			case atom.Div:
				if hasClass(n, "page-break") {
					out = append(out, block{kind: blockPageBreak})
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func inline(n *html.Node) string {
	var sb strings.Builder
	var write func(n *html.Node)
	write = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(escapeText(collapse(c.Data)))
			case html.ElementNode:
				switch c.DataAtom {
				case atom.B, atom.Strong:
					sb.WriteString("<b>")
					write(c)
					sb.WriteString("</b>")
				case atom.I, atom.Em:
					sb.WriteString("<i>")
					write(c)
					sb.WriteString("</i>")
				case atom.U:
					sb.WriteString("<u>")
					write(c)
					sb.WriteString("</u>")
				case atom.A:
					fmt.Fprintf(&sb, `<a href="%s">`, strings.ReplaceAll(attr(c, "href"), `"`, ""))
					write(c)
					sb.WriteString("</a>")
				case atom.Br:
					sb.WriteString("<br>")
				default:
					write(c)
				}
			}
		}
	}
	write(n)
	return strings.TrimSpace(sb.String())
}

func row(tr *html.Node) (block, bool) {
	b := block{kind: blockRow}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
			b.header = true
			b.cells = append(b.cells, text(c))
		case atom.Td:
			b.cells = append(b.cells, text(c))
		}
	}
	return b, len(b.cells) > 0
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(collapse(sb.String()))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// collapse folds whitespace runs to one space, keeping a single leading or
// trailing space so inline runs such as "a <b>b</b>" stay separated.
func collapse(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// escapeText keeps literal angle brackets from being read as tags.
func escapeText(s string) string {
	return strings.NewReplacer("<", "‹", ">", "›").Replace(s)
}
