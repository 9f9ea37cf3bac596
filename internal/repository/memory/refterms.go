package memory

import (
	"slices"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// refTerms indexes referring terms by their lowercased form. Each trie item
// holds the byte-sorted spellings that share that form.
type refTerms struct {
	trie *patricia.Trie
	n    int
}

func newRefTerms() *refTerms {
	return &refTerms{trie: patricia.NewTrie()}
}

func (r *refTerms) variants(key string) []string {
	item := r.trie.Get(patricia.Prefix(key))
	if item == nil {
		return nil
	}
	return item.([]string)
}

// add inserts term; adding an existing term is a no-op.
func (r *refTerms) add(term string) {
	key := strings.ToLower(term)
	vs := r.variants(key)
	i, found := slices.BinarySearch(vs, term)
	if found {
		return
	}
	r.trie.Set(patricia.Prefix(key), slices.Insert(slices.Clone(vs), i, term))
	r.n++
}

// remove deletes term and reports whether it was present.
func (r *refTerms) remove(term string) bool {
	key := strings.ToLower(term)
	vs := r.variants(key)
	i, found := slices.BinarySearch(vs, term)
	if !found {
		return false
	}
	vs = slices.Delete(slices.Clone(vs), i, i+1)
	if len(vs) == 0 {
		r.trie.Delete(patricia.Prefix(key))
	} else {
		r.trie.Set(patricia.Prefix(key), vs)
	}
	r.n--
	return true
}

// resolve returns the stored spelling equal to str ignoring case.
func (r *refTerms) resolve(str string) (string, bool) {
	if str == "" {
		return "", false
	}
	vs := r.variants(strings.ToLower(str))
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (r *refTerms) list() []string {
	out := make([]string, 0, r.n)
	_ = r.trie.Visit(func(_ patricia.Prefix, item patricia.Item) error {
		out = append(out, item.([]string)...)
		return nil
	})
	return out
}

func (r *refTerms) count() int { return r.n }
