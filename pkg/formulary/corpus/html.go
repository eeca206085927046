package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLSource extracts paragraph text from HTML page dumps. Every <p> element
// becomes one document, identified as "<file>-<n>". The source is restartable:
// parsing happens anew on each Docs call.
type HTMLSource struct {
	Paths    []string
	Splitter *Splitter
}

// Docs parses all files up front and returns an iterator over their
// paragraphs. Files that fail to parse are skipped.
func (h *HTMLSource) Docs() (Iterator, error) {
	split := h.Splitter
	if split == nil {
		split, _ = NewSplitter("", false)
	}
	var docs []Document
	for _, path := range h.Paths {
		paras, err := extractParagraphs(path)
		if err != nil {
			continue
		}
		for pi, para := range paras {
			words := split.Split(para)
			if len(words) == 0 {
				continue
			}
			docs = append(docs, Document{
				ID:    fmt.Sprintf("%s-%d", path, pi+1),
				Words: words,
			})
		}
	}
	return &sliceIterator{docs: docs}, nil
}

func extractParagraphs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseParagraphs(f)
}

func parseParagraphs(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var paras []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				paras = append(paras, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return paras, nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
