package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCorpusFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing corpus file: %v", err)
	}
	return path
}

const bioCorpus = `Photosynthesis converts light energy into chemical energy.
Chlorophyll is the primary pigment involved.

The Calvin cycle fixes carbon dioxide into sugars.
It runs in the stroma of the chloroplast.

Cellular respiration releases the stored energy.
Mitochondria host the electron transport chain.`

func TestFileSearcherRanksByKeywordOverlap(t *testing.T) {
	path := writeCorpusFile(t, "bio.txt", bioCorpus)

	searcher, err := newFileSearcher(path, 2)
	if err != nil {
		t.Fatalf("newFileSearcher() error = %v", err)
	}
	if searcher.name != "bio.txt" {
		t.Errorf("name = %q", searcher.name)
	}
	if len(searcher.chunks) != 3 {
		t.Fatalf("chunks = %d, want 3 paragraphs", len(searcher.chunks))
	}

	chunks, err := searcher.FetchRelevant(context.Background(), "How does photosynthesis use chlorophyll?")
	if err != nil {
		t.Fatalf("FetchRelevant() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want the single matching paragraph", len(chunks))
	}
	if chunks[0].Source != "bio.txt" || chunks[0].Format != "txt" {
		t.Errorf("chunk metadata = %q (%q)", chunks[0].Source, chunks[0].Format)
	}
}

func TestFileSearcherOffTopicQueryIsEmpty(t *testing.T) {
	path := writeCorpusFile(t, "bio.txt", bioCorpus)

	searcher, err := newFileSearcher(path, 5)
	if err != nil {
		t.Fatalf("newFileSearcher() error = %v", err)
	}

	chunks, err := searcher.FetchRelevant(context.Background(), "quarterly revenue projections")
	if err != nil {
		t.Fatalf("FetchRelevant() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("off-topic query returned %d chunks", len(chunks))
	}
}

func TestFileSearcherCapsAtTopK(t *testing.T) {
	path := writeCorpusFile(t, "bio.txt", bioCorpus)

	searcher, err := newFileSearcher(path, 1)
	if err != nil {
		t.Fatalf("newFileSearcher() error = %v", err)
	}

	chunks, err := searcher.FetchRelevant(context.Background(), "energy chemical chlorophyll cycle respiration")
	if err != nil {
		t.Fatalf("FetchRelevant() error = %v", err)
	}
	if len(chunks) > 1 {
		t.Errorf("got %d chunks, want at most top-k of 1", len(chunks))
	}
}

func TestFileSearcherRejectsEmptyFiles(t *testing.T) {
	path := writeCorpusFile(t, "empty.txt", "   \n\n  ")
	if _, err := newFileSearcher(path, 5); err == nil {
		t.Error("expected an error for a file with no text")
	}
}

func TestQueryTermsFiltersShortWords(t *testing.T) {
	terms := queryTerms("How is the sun's energy used?")
	for _, term := range terms {
		if len(term) < 4 {
			t.Errorf("short word %q survived filtering", term)
		}
	}
	found := false
	for _, term := range terms {
		if term == "energy" {
			found = true
		}
	}
	if !found {
		t.Errorf("terms = %v, want \"energy\" included", terms)
	}
}
