// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"regexp"
	"strings"
)

// DefaultChunkSize is the byte bound used when splitting long content for
// the translation providers.
const DefaultChunkSize = 4000

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// SplitContent splits text into chunks of at most maxLength bytes, breaking
// only at paragraph boundaries. Paragraphs are accumulated greedily; a single
// paragraph longer than maxLength becomes its own chunk and is not force-split.
func SplitContent(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	paragraphs := paragraphSplit.Split(text, -1)

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len("\n\n")+len(p) > maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// CombineChunks rejoins translated chunks with a blank-line separator,
// skipping empty chunks. CombineChunks(SplitContent(x, n)) reproduces x's
// paragraphs in order, with whitespace runs between paragraphs normalized
// to the blank-line separator.
func CombineChunks(chunks []string) string {
	var parts []string
	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			continue
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, "\n\n")
}

// EstimateChunks returns the chunk count SplitContent would produce for
// content of the given length, used for gap reports.
func EstimateChunks(contentLength, maxLength int) int {
	if maxLength <= 0 {
		maxLength = DefaultChunkSize
	}
	if contentLength == 0 {
		return 0
	}
	return (contentLength + maxLength - 1) / maxLength
}
