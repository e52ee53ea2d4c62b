// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// NodeInfo records the structural position of one extracted text node:
// the enclosing tag and its attributes, at the same ordinal as the text.
type NodeInfo struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ExtractText parses HTML and walks all non-whitespace text nodes in
// document order. It returns their trimmed values joined by a blank line,
// plus per-node structural metadata for later reconstruction.
func ExtractText(source string) (string, []NodeInfo, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", nil, fmt.Errorf("parsing html: %w", err)
	}

	var texts []string
	var structure []NodeInfo
	walkTextNodes(doc, func(n *html.Node) {
		texts = append(texts, strings.TrimSpace(n.Data))
		structure = append(structure, nodeInfoFor(n))
	})

	return strings.Join(texts, "\n\n"), structure, nil
}

// RebuildHTML substitutes translated paragraphs back into the original
// HTML's text nodes by ordinal position. Translated text is split on
// blank-line boundaries; paragraph N replaces text node N. When there are
// fewer translated paragraphs than text nodes, the trailing nodes keep
// their source text — current behavior, kept as-is because the intent of
// a short translation is ambiguous. Surplus paragraphs are appended as
// generic <p> elements; when the original has no structural container at
// all, every paragraph is wrapped in <p> instead.
func RebuildHTML(originalHTML, translatedText string) (string, error) {
	paragraphs := splitParagraphs(translatedText)

	doc, err := html.Parse(strings.NewReader(originalHTML))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var textNodes []*html.Node
	walkTextNodes(doc, func(n *html.Node) {
		textNodes = append(textNodes, n)
	})

	if len(textNodes) == 0 {
		return wrapParagraphs(paragraphs), nil
	}

	for i, node := range textNodes {
		if i >= len(paragraphs) {
			break
		}
		node.Data = paragraphs[i]
	}

	body := findBody(doc)
	if body != nil && len(paragraphs) > len(textNodes) {
		for _, p := range paragraphs[len(textNodes):] {
			pNode := &html.Node{Type: html.ElementNode, Data: "p"}
			pNode.AppendChild(&html.Node{Type: html.TextNode, Data: p})
			body.AppendChild(pNode)
		}
	}

	return renderFragment(doc, strings.Contains(strings.ToLower(originalHTML), "<html")), nil
}

// walkTextNodes visits every non-whitespace text node in document order,
// skipping script and style contents.
func walkTextNodes(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkTextNodes(c, visit)
	}
}

// nodeInfoFor describes the enclosing element of a text node.
func nodeInfoFor(n *html.Node) NodeInfo {
	info := NodeInfo{Tag: "p"}
	if parent := n.Parent; parent != nil && parent.Type == html.ElementNode {
		info.Tag = parent.Data
		if len(parent.Attr) > 0 {
			info.Attributes = make(map[string]string, len(parent.Attr))
			for _, a := range parent.Attr {
				info.Attributes[a.Key] = a.Val
			}
		}
	}
	return info
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphSplit.Split(text, -1) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs = append(paragraphs, strings.TrimSpace(p))
	}
	return paragraphs
}

func wrapParagraphs(paragraphs []string) string {
	var sb strings.Builder
	for _, p := range paragraphs {
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(p))
		sb.WriteString("</p>")
	}
	return sb.String()
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	return body
}

// renderFragment renders either the whole document or, when the input was a
// bare fragment, only the children of <body>. html.Parse always produces a
// full document tree, so fragments must be unwrapped on the way out.
func renderFragment(doc *html.Node, fullDocument bool) string {
	var sb strings.Builder
	if fullDocument {
		_ = html.Render(&sb, doc)
		return sb.String()
	}
	body := findBody(doc)
	if body == nil {
		_ = html.Render(&sb, doc)
		return sb.String()
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}
