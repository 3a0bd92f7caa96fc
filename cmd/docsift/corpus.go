package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docsift/docsift/retrieval"
)

// fileSearcher is a dependency-free retrieval backend for local runs. It
// splits one plain-text file into paragraph chunks and ranks them by
// keyword overlap with the query. Good enough for trying the pipeline
// without a vector database.
type fileSearcher struct {
	name   string
	chunks []retrieval.Chunk
	topK   int
}

var _ retrieval.RelevantFetcher = (*fileSearcher)(nil)

// newFileSearcher loads path and chunks it by blank-line paragraphs.
func newFileSearcher(path string, topK int) (*fileSearcher, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	format := strings.TrimPrefix(filepath.Ext(path), ".")

	var chunks []retrieval.Chunk
	for _, paragraph := range strings.Split(string(raw), "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		chunks = append(chunks, retrieval.NewChunk(paragraph, map[string]string{
			"source_file": name,
			"file_format": format,
		}))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("file contains no text")
	}
	if topK <= 0 {
		topK = 5
	}

	return &fileSearcher{name: name, chunks: chunks, topK: topK}, nil
}

// FetchRelevant scores every chunk by the number of query terms it
// contains and returns the best topK. Chunks matching nothing are
// dropped, so an off-topic query yields an empty result rather than
// arbitrary text.
func (fs *fileSearcher) FetchRelevant(_ context.Context, query string) ([]retrieval.Chunk, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		chunk retrieval.Chunk
		score int
	}
	var matches []scored
	for _, chunk := range fs.chunks {
		lowered := strings.ToLower(chunk.Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(lowered, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{chunk: chunk, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > fs.topK {
		matches = matches[:fs.topK]
	}

	relevant := make([]retrieval.Chunk, len(matches))
	for i, match := range matches {
		relevant[i] = match.chunk
	}
	return relevant, nil
}

// queryTerms lowercases the query and keeps words long enough to carry
// meaning, filtering stop-word noise like "the" and "of".
func queryTerms(query string) []string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,?!;:\"'()")
		if len(word) >= 4 {
			terms = append(terms, word)
		}
	}
	return terms
}
