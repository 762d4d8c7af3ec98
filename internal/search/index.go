// Package search provides a simple, deterministic, concurrency-safe in-memory
// search index over keyed text documents:
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options for stop words and text normalization
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (input order breaks ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// document's token set: score = |Q ∩ D| / |Q ∪ D|. A document without a
// shared token still matches when its normalized text contains the whole
// normalized query; it then scores SubstringScore.
package search

import (
	"regexp"
	"sort"
	"strings"
)

// SubstringScore is the score of a document matched only by containment.
const SubstringScore = 1e-6

// Document is one searchable unit.
type Document struct {
	ID   uint
	Text string
}

// Result is a matching document id with its similarity score.
type Result struct {
	ID    uint
	Score float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	// Search returns up to k matches, best first. k <= 0 returns all.
	Search(query string, k int) []Result
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	normalize func(string) string
	maxDocs   int
}

func defaultConfig() config {
	return config{
		stopwords: nil,
		normalize: strings.ToLower,
		maxDocs:   0,
	}
}

// WithStopwords drops the given words from documents and queries. Words are
// passed through the normalizer in effect when the index is built.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithNormalizer replaces the default lowercasing applied to documents,
// queries and stop words before tokenization.
func WithNormalizer(fn func(string) string) Option {
	return func(c *config) {
		if fn != nil {
			c.normalize = fn
		}
	}
}

// WithMaxDocs caps the number of indexed documents.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     uint
	text   string
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over docs. Documents with blank text are skipped.
func NewIndex(docs []Document, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.stopwords != nil {
		norm := make(map[string]struct{}, len(cfg.stopwords))
		for w := range cfg.stopwords {
			norm[cfg.normalize(w)] = struct{}{}
		}
		cfg.stopwords = norm
	}

	out := make([]doc, 0, len(docs))
	for _, d := range docs {
		t := normalizeWhitespace(cfg.normalize(d.Text))
		if t == "" {
			continue
		}
		out = append(out, doc{id: d.ID, text: t, tokens: tokenize(t, cfg.stopwords)})
		if cfg.maxDocs > 0 && len(out) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: out}
}

func (i *index) Search(q string, k int) []Result {
	if len(i.docs) == 0 {
		return nil
	}
	q = normalizeWhitespace(i.cfg.normalize(q))
	if q == "" {
		return nil
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	qLen := len(qTokens)

	type scored struct {
		id    uint
		score float64
		pos   int
	}

	var buf []scored
	for pos, d := range i.docs {
		score := 0.0
		if over := overlap(qTokens, d.tokens); over > 0 {
			score = float64(over) / float64(qLen+len(d.tokens)-over)
		} else if strings.Contains(d.text, q) {
			score = SubstringScore
		}
		if score <= 0 {
			continue
		}
		buf = append(buf, scored{id: d.id, score: score, pos: pos})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		return buf[a].pos < buf[b].pos
	})

	if k <= 0 || k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for j := 0; j < k; j++ {
		out[j] = Result{ID: buf[j].id, Score: buf[j].score}
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
