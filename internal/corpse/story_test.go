package corpse

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTail(t *testing.T) {
	cases := []struct {
		name  string
		words []string
		n     int
		want  []string
	}{
		{name: "longer than window", words: []string{"the", "quick", "brown"}, n: 2, want: []string{"quick", "brown"}},
		{name: "shorter than window", words: []string{"fox", "jumps"}, n: 5, want: []string{"fox", "jumps"}},
		{name: "exactly window", words: []string{"a", "b"}, n: 2, want: []string{"a", "b"}},
		{name: "empty", words: nil, n: 3, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Tail(tc.words, tc.n))
		})
	}
}

func TestTail_DoesNotAlias(t *testing.T) {
	words := []string{"a", "b", "c"}
	tail := Tail(words, 2)
	tail[0] = "x"
	assert.Equal(t, []string{"a", "b", "c"}, words)
}

func TestChunk(t *testing.T) {
	cases := []struct {
		name string
		in   string
		size int
		want []string
	}{
		{name: "fits", in: "hello", size: 1940, want: []string{"hello"}},
		{name: "exact multiple", in: "abcdef", size: 3, want: []string{"abc", "def"}},
		{name: "splits words", in: "ab cd", size: 2, want: []string{"ab", " c", "d"}},
		{name: "empty", in: "", size: 10, want: []string{""}},
		{name: "multibyte", in: "ééé", size: 2, want: []string{"éé", "é"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Chunk(tc.in, tc.size))
		})
	}
}

func TestChunk_RespectsBudget(t *testing.T) {
	story := strings.Repeat("exquisite corpse ", 500)

	chunks := Chunk(story, 1940)
	assert.Equal(t, story, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 1940)
	}
}
