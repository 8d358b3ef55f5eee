package collect

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/accrava/secretsweep/internal/types"
)

// HTMLDocument collects script elements from a saved HTML page.
type HTMLDocument struct {
	Path string
	// Reader is used instead of Path when set.
	Reader io.Reader
}

func (h HTMLDocument) Name() string {
	if h.Path != "" {
		return "html:" + h.Path
	}
	return "html"
}

func (h HTMLDocument) Collect(_ context.Context) ([]types.ScanUnit, error) {
	r := h.Reader
	if r == nil {
		f, err := os.Open(h.Path)
		if err != nil {
			return nil, fmt.Errorf("open html: %w", err)
		}
		defer f.Close()
		r = f
	}
	return ScriptsFromHTML(r)
}

// ScriptsFromHTML walks the document and returns one unit per <script>
// element in document order. Elements with a src attribute become external
// references; the rest are inline scripts labelled by their index among all
// script elements.
func ScriptsFromHTML(r io.Reader) ([]types.ScanUnit, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var units []types.ScanUnit
	index := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			units = append(units, ScriptUnit(index, attr(n, "src"), textOf(n)))
			index++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return units, nil
}

// ScriptUnit builds the unit for script element i.
func ScriptUnit(i int, src, content string) types.ScanUnit {
	if src != "" {
		return types.ScanUnit{Kind: types.KindExternalScript, Label: src, Src: src}
	}
	return types.ScanUnit{Kind: types.KindInlineScript, Label: types.ScriptLabel(i), Content: content}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
