package ingest

import "strings"

// Chunking parameters. Word counts, not tokens: the corpus is French prose
// and word counts track the embedding model's budget closely enough.
const (
	DefaultTargetWords  = 200
	DefaultOverlapWords = 30
	MinChunkWords       = 15
)

// ChunkOptions tunes the chunker. Zero fields fall back to the defaults
// above; an explicitly negative OverlapWords or MinWords means none.
type ChunkOptions struct {
	TargetWords  int
	OverlapWords int
	MinWords     int
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	if o.TargetWords <= 0 {
		o.TargetWords = DefaultTargetWords
	}
	if o.OverlapWords == 0 {
		o.OverlapWords = DefaultOverlapWords
	}
	if o.MinWords == 0 {
		o.MinWords = MinChunkWords
	}
	return o
}

// sentence terminators: ASCII plus the full-width and Devanagari variants
// that show up in mixed-script source material.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '。', '！', '？':
		return true
	}
	return false
}

// splitSentences splits text at terminator-then-whitespace boundaries,
// keeping the terminator with its sentence. Text without any terminator
// comes back as a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if isTerminator(r) && (i == len(runes)-1 || isSpace(runes[i+1])) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', ' ':
		return true
	}
	return false
}

// ChunkText splits text into overlapping, sentence-aligned chunks. Sentences
// accumulate greedily while the running word count stays within the target;
// when the next sentence would overflow a non-empty chunk, the chunk is
// closed and the next one is seeded with the last OverlapWords words of the
// closed text, so facts near a boundary stay retrievable from both sides.
// Chunks shorter than MinWords are dropped afterwards; callers that end up
// with zero chunks fall back to indexing the whole text as one chunk.
// Deterministic: the same input always yields the same chunk sequence.
func ChunkText(text string, opts ChunkOptions) []string {
	opts = opts.withDefaults()

	var chunks []string
	var current []string
	wordCount := 0

	flush := func() {
		if joined := strings.TrimSpace(strings.Join(current, " ")); joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, sentence := range splitSentences(text) {
		words := len(strings.Fields(sentence))

		if wordCount+words <= opts.TargetWords || len(current) == 0 {
			current = append(current, sentence)
			wordCount += words
			continue
		}

		flush()

		if opts.OverlapWords > 0 {
			all := strings.Fields(strings.Join(current, " "))
			tail := all
			if len(all) > opts.OverlapWords {
				tail = all[len(all)-opts.OverlapWords:]
			}
			current = []string{strings.Join(tail, " ")}
			wordCount = len(tail)
		} else {
			current = nil
			wordCount = 0
		}

		current = append(current, sentence)
		wordCount += words
	}
	flush()

	if opts.MinWords <= 0 {
		return chunks
	}
	kept := chunks[:0]
	for _, c := range chunks {
		if len(strings.Fields(c)) >= opts.MinWords {
			kept = append(kept, c)
		}
	}
	return kept
}
