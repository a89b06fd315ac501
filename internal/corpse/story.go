/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package corpse

import (
	"slices"
	"strings"
)

// Tail returns the last n words, or all of them when there are fewer.
func Tail(words []string, n int) []string {
	if n >= len(words) {
		return slices.Clone(words)
	}
	if n < 0 {
		n = 0
	}

	return slices.Clone(words[len(words)-n:])
}

// Chunk splits s into pieces of at most size characters. Boundaries ignore
// words, so a word can straddle two chunks. An empty s yields one empty
// chunk.
func Chunk(s string, size int) []string {
	runes := []rune(s)
	if size < 1 || len(runes) == 0 {
		return []string{s}
	}

	chunks := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}

	return chunks
}

func joinFragments(fragments []Fragment) string {
	var words []string
	for _, f := range fragments {
		words = append(words, f.Words...)
	}

	return strings.Join(words, " ")
}
