// Package searchindex implements a word-prefix full-text index over
// package name and summary. Nothing in the retrieved dependency corpus is
// an embeddable prefix-search engine that fits an in-process package
// list — the nearby tools are schema/config validators or cloud search
// services — so this is deliberately stdlib-only; see the design ledger.
package searchindex

import (
	"context"
	"strings"
	"time"

	"github.com/manasm11/packtui/internal/pkgdb"
)

// Index maps lowercased word tokens to the base names of packages whose
// name or summary contains that word. Prefix queries are resolved by a
// linear scan of the token set, acceptable at package-list scale.
type Index struct {
	tokens map[string][]string // token -> base names, deduplicated
}

// ResultSet is the output of Search: a membership test over base names.
// A nil *ResultSet is "no active search"; a non-nil ResultSet with zero
// entries is "active search, no matches" — callers must keep these
// distinct.
type ResultSet struct {
	names map[string]bool
}

// Contains reports whether base name n is in the result set.
func (r *ResultSet) Contains(n string) bool {
	if r == nil {
		return true
	}
	return r.names[n]
}

// Len reports how many distinct base names matched.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Build rebuilds the index from scratch over every package the cache
// currently knows about.
func Build(ctx context.Context, cache *pkgdb.Cache) (*Index, int, time.Duration, error) {
	start := time.Now()
	idx := &Index{tokens: make(map[string][]string)}

	raw, err := cache.Packages(pkgdb.SortDefault)
	if err != nil {
		return nil, 0, time.Since(start), err
	}

	count := 0
	for _, p := range raw {
		select {
		case <-ctx.Done():
			return idx, count, time.Since(start), ctx.Err()
		default:
		}

		base := cache.DisplayName(p.Fullname)
		for _, word := range tokenize(p.Name + " " + p.Summary) {
			idx.tokens[word] = appendUnique(idx.tokens[word], base)
		}
		count++
	}

	return idx, count, time.Since(start), nil
}

// Search splits query on whitespace, prefix-matches each token against
// the index, and ANDs the per-token base-name sets together. An empty
// query yields an empty, non-nil ResultSet (an "active search with no
// terms" state, distinct from nil meaning "no search at all").
func (idx *Index) Search(query string) *ResultSet {
	terms := tokenize(query)
	if len(terms) == 0 {
		return &ResultSet{names: make(map[string]bool)}
	}

	var matched map[string]bool
	for i, term := range terms {
		names := idx.prefixMatch(term)
		if i == 0 {
			matched = names
			continue
		}
		for name := range matched {
			if !names[name] {
				delete(matched, name)
			}
		}
	}
	return &ResultSet{names: matched}
}

func (idx *Index) prefixMatch(term string) map[string]bool {
	out := make(map[string]bool)
	for token, names := range idx.tokens {
		if strings.HasPrefix(token, term) {
			for _, n := range names {
				out[n] = true
			}
		}
	}
	return out
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:()[]{}\"'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func appendUnique(names []string, n string) []string {
	for _, existing := range names {
		if existing == n {
			return names
		}
	}
	return append(names, n)
}
