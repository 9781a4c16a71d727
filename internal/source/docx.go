// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// bodyExpr selects the document body. Matching on namespace URI keeps
// the lookup independent of the prefix the producer chose.
var bodyExpr = xpath.MustCompile(
	`/*[local-name()='document' and namespace-uri()='` + wordNS + `']` +
		`/*[local-name()='body' and namespace-uri()='` + wordNS + `']`,
)

// docxParagraphs extracts paragraph text from the main document part of a
// .docx archive.
func docxParagraphs(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("no %s in archive", documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", documentPart, err)
	}
	defer rc.Close()

	doc, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", documentPart, err)
	}

	body := xmlquery.QuerySelector(doc, bodyExpr)
	if body == nil {
		return nil, fmt.Errorf("no w:body in %s", documentPart)
	}
	return collectParagraphs(nil, body), nil
}

// collectParagraphs appends the text of every w:p under n in document
// order, including paragraphs inside tables. A paragraph nested in another
// (a text box) follows its parent. DrawingML a:p is not a w:p and is
// never collected.
func collectParagraphs(paras []string, n *xmlquery.Node) []string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if c.NamespaceURI == wordNS && c.Data == "p" {
			var b strings.Builder
			writeRuns(&b, c)
			paras = append(paras, b.String())
		}
		paras = collectParagraphs(paras, c)
	}
	return paras
}

// writeRuns appends the visible text under a paragraph: w:t text, w:tab
// as a tab, w:br and w:cr as newlines. Nested paragraphs (text boxes) are
// skipped; collectParagraphs visits them on their own.
func writeRuns(b *strings.Builder, para *xmlquery.Node) {
	for c := para.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
}

func walk(b *strings.Builder, n *xmlquery.Node) {
	if n.Type != xmlquery.ElementNode {
		return
	}
	if n.NamespaceURI == wordNS {
		switch n.Data {
		case "t":
			b.WriteString(n.InnerText())
			return
		case "tab":
			b.WriteByte('\t')
			return
		case "br", "cr":
			b.WriteByte('\n')
			return
		case "p":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
}
