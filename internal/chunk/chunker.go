// Package chunk splits candidate blocks into bounded-size passages.
package chunk

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/pagescout/pagescout/internal/extract"
)

// Passage is a size-bounded slice of a block's text, carrying the parent
// block's markup and path so results can be traced back to the source DOM.
type Passage struct {
	Text string
	HTML string
	Path string
}

const (
	// DefaultSize is the per-passage token budget.
	DefaultSize = 200

	// minPassageLength filters out noise fragments after windowing.
	minPassageLength = 10

	// encodingName is the BPE encoding used for token windows.
	encodingName = "cl100k_base"
)

// Tokenizer encodes text to token IDs and back. Injected so tests can use
// a deterministic fake and so the chunker degrades to word mode when no
// encoding is available.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// tiktokenizer adapts a tiktoken encoding to the Tokenizer interface.
type tiktokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t *tiktokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Chunker windows block text into passages of at most size tokens. With a
// nil tokenizer it falls back to whole words with a halved window, since
// the word approximation is coarser than token counting.
type Chunker struct {
	tokenizer Tokenizer
}

// NewChunker creates a chunker using the cl100k_base encoding. If the
// encoding cannot be loaded the chunker runs in word mode.
func NewChunker() *Chunker {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return &Chunker{}
	}
	return &Chunker{tokenizer: &tiktokenizer{enc: enc}}
}

// NewChunkerWithTokenizer creates a chunker with an explicit tokenizer.
// Pass nil to force word mode.
func NewChunkerWithTokenizer(t Tokenizer) *Chunker {
	return &Chunker{tokenizer: t}
}

// Split windows each block into passages of at most size units, in block
// order then window order. Windows whose trimmed text is at most 10
// characters are dropped. Output is deterministic for identical input.
func (c *Chunker) Split(blocks []extract.Block, size int) []Passage {
	if size <= 0 {
		size = DefaultSize
	}

	var passages []Passage
	for _, block := range blocks {
		for _, text := range c.windows(block.Text, size) {
			text = strings.TrimSpace(text)
			if len(text) <= minPassageLength {
				continue
			}
			passages = append(passages, Passage{
				Text: text,
				HTML: block.HTML,
				Path: block.Path,
			})
		}
	}
	return passages
}

// windows cuts text into non-overlapping windows of at most size units.
func (c *Chunker) windows(text string, size int) []string {
	if c.tokenizer != nil {
		tokens := c.tokenizer.Encode(text)
		var out []string
		for i := 0; i < len(tokens); i += size {
			end := min(i+size, len(tokens))
			out = append(out, c.tokenizer.Decode(tokens[i:end]))
		}
		return out
	}

	// Word mode: half the window to compensate for words being larger
	// units than subword tokens.
	step := size / 2
	if step < 1 {
		step = 1
	}
	words := strings.Fields(text)
	var out []string
	for i := 0; i < len(words); i += step {
		end := min(i+step, len(words))
		out = append(out, strings.Join(words[i:end], " "))
	}
	return out
}
