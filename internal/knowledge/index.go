package knowledge

import (
	"sync"
)

// Index holds the loaded knowledge base and FAQ pairs for concurrent
// readers.
type Index struct {
	knowledge *KnowledgeBase
	pairs     []FAQPair
	mu        sync.RWMutex
}

// NewIndex creates a new empty index
func NewIndex() *Index {
	return &Index{
		knowledge: NewKnowledgeBase(),
	}
}

// Build replaces the indexed data. pairs may be nil, in which case Pairs
// derives them from the knowledge base.
func (idx *Index) Build(kb *KnowledgeBase, pairs []FAQPair) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if kb == nil {
		kb = NewKnowledgeBase()
	}
	idx.knowledge = kb
	idx.pairs = pairs
}

// Knowledge returns the indexed knowledge base
func (idx *Index) Knowledge() *KnowledgeBase {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.knowledge
}

// Pairs returns the FAQ pairs used for similarity retrieval
func (idx *Index) Pairs() []FAQPair {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.pairs != nil {
		return idx.pairs
	}
	return idx.knowledge.Pairs()
}

// HasFAQ reports whether FAQ pairs were loaded separately from the
// knowledge base
func (idx *Index) HasFAQ() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.pairs != nil
}

// Lookup returns the reply stored for an exact keyword phrase
func (idx *Index) Lookup(keyword string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.knowledge.Get(NormalizeQuestion(keyword))
}

// Count returns the number of knowledge entries
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.knowledge.Len()
}
