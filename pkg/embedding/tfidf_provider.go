package embedding

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// TfidfProvider is an in-process TF-IDF vectorizer. It needs no external
// model service, which makes retrieval fully deterministic for a fixed
// corpus. The vocabulary is rebuilt on every Prepare call, so vectors from
// different corpus generations are not comparable.
type TfidfProvider struct {
	mu           sync.RWMutex
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewTfidfProvider() *TfidfProvider {
	return &TfidfProvider{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// PrepareCorpus returns a new provider prepared on the given corpus. The
// receiver is left untouched, so callers still holding vectors from an
// earlier corpus can keep scoring against it.
func (p *TfidfProvider) PrepareCorpus(corpus []string) (EmbeddingProvider, error) {
	next := NewTfidfProvider()
	if err := next.Prepare(corpus); err != nil {
		return nil, err
	}
	return next, nil
}

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (p *TfidfProvider) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		tokens := p.tokenize(text)
		seen := make(map[string]struct{})
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable term ordering so vector positions are reproducible
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.vocabulary = make(map[string]int, len(terms))
	p.idf = make([]float64, len(terms))
	N := float64(len(corpus))
	for i, term := range terms {
		p.vocabulary[term] = i
		// Smoothed IDF
		p.idf[i] = math.Log((1+N)/(1+float64(df[term]))) + 1.0
	}
	p.dimension = len(terms)
	p.prepared = true
	return nil
}

// Dimension returns the size of vectors produced after Prepare.
func (p *TfidfProvider) Dimension() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dimension
}

// Generate computes the L2-normalized TF-IDF vector for the text. The task
// type is ignored; queries and documents share one vocabulary.
func (p *TfidfProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.prepared {
		return nil, errors.New("tfidf provider not prepared; ingest a corpus first")
	}

	vec := make([]float32, p.dimension)
	tokens := p.tokenize(text)
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if idx, ok := p.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: vec}}, nil
	}

	norm := 0.0
	for idx, count := range tf {
		tfv := float64(count) / float64(total)
		v := tfv * p.idf[idx]
		vec[idx] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: vec}}, nil
}

func (p *TfidfProvider) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := p.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := p.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "do", "does", "did", "i", "you", "we", "they", "my", "our",
		"your", "how", "what", "when", "where", "get", "can", "will", "just",
		"should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
