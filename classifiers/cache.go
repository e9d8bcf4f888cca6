// Package classifiers provides the classifier cache shared by every
// commonizer of a run: namespace classification and the registry of
// classifiers that have already been commonized.
package classifiers

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/broady/commonizer/cir"
)

// DefaultMemoSize is the number of namespace answers remembered by a Cache.
const DefaultMemoSize = 4096

// NamespacePredicate reports whether a package lies in a namespace that is
// shared by every platform a priori.
type NamespacePredicate func(pkg string) bool

// PrefixPredicate returns a predicate matching packages equal to one of the
// namespaces or nested below one, using either "." or "/" as separator.
func PrefixPredicate(namespaces ...string) NamespacePredicate {
	ns := slices.Clone(namespaces)
	return func(pkg string) bool {
		for _, n := range ns {
			if n == "" {
				continue
			}
			if pkg == n || strings.HasPrefix(pkg, n+".") || strings.HasPrefix(pkg, n+"/") {
				return true
			}
		}
		return false
	}
}

// Entry records the outcome of commonizing one classifier.
type Entry struct {
	// ID is the classifier identity.
	ID cir.ClassifierID

	// Declaration is the synthesized shared declaration, or nil when the
	// classifier was processed without producing one.
	Declaration cir.Declaration

	// Strategy is the strategy that produced Declaration.
	Strategy cir.Strategy
}

// Commonized reports whether the classifier has a shared declaration.
func (e *Entry) Commonized() bool {
	return e.Declaration != nil
}

// Cache is a read-through table of classifier facts for one run.
// Entries are never evicted or overwritten: the first registration wins and
// every later reader observes the same *Entry.
// A Cache is safe for concurrent use.
type Cache struct {
	isStandard NamespacePredicate
	memo       *lru.Cache[string, bool]

	mu      sync.RWMutex
	entries map[cir.ClassifierID]*Entry
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	memoSize int
}

// WithMemoSize bounds the number of memoized namespace answers.
func WithMemoSize(n int) Option {
	return func(o *options) {
		o.memoSize = n
	}
}

// New creates a Cache classifying namespaces with isStandard.
// A nil predicate treats no package as standard.
func New(isStandard NamespacePredicate, opts ...Option) (*Cache, error) {
	o := options{memoSize: DefaultMemoSize}
	for _, opt := range opts {
		opt(&o)
	}
	if isStandard == nil {
		isStandard = func(string) bool { return false }
	}
	memo, err := lru.New[string, bool](o.memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create namespace memo: %w", err)
	}
	return &Cache{
		isStandard: isStandard,
		memo:       memo,
		entries:    make(map[cir.ClassifierID]*Entry),
	}, nil
}

// IsStandard reports whether id lies under a standard namespace.
// Classifiers without a package (language builtins) are always standard.
func (c *Cache) IsStandard(id cir.ClassifierID) bool {
	if id.Package == "" {
		return true
	}
	if v, ok := c.memo.Get(id.Package); ok {
		return v
	}
	v := c.isStandard(id.Package)
	c.memo.Add(id.Package, v)
	return v
}

// Lookup returns the entry registered for id, if any.
func (c *Cache) Lookup(id cir.ClassifierID) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// Register records decl as the shared form of id. If id is already
// registered, the existing entry is returned unchanged with false.
func (c *Cache) Register(id cir.ClassifierID, decl cir.Declaration, strategy cir.Strategy) (*Entry, bool) {
	return c.store(&Entry{ID: id, Declaration: decl, Strategy: strategy})
}

// MarkUncommonized records that id was processed without producing a shared
// declaration. First writer wins, as with Register.
func (c *Cache) MarkUncommonized(id cir.ClassifierID) (*Entry, bool) {
	return c.store(&Entry{ID: id, Strategy: cir.StrategyNone})
}

func (c *Cache) store(e *Entry) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[e.ID]; ok {
		return existing, false
	}
	c.entries[e.ID] = e
	return e, true
}

// Usable reports whether a shared declaration may refer to id: it is
// standard, or it has not been recorded as processed without a shared form.
func (c *Cache) Usable(id cir.ClassifierID) bool {
	if c.IsStandard(id) {
		return true
	}
	e, ok := c.Lookup(id)
	return !ok || e.Commonized()
}

// Len returns the number of registered entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns all entries ordered by classifier ID.
func (c *Cache) Snapshot() []*Entry {
	c.mu.RLock()
	out := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Entry) int {
		return a.ID.Compare(b.ID)
	})
	return out
}
