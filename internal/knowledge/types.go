package knowledge

import "strings"

// DefaultKey is the knowledge base key that holds the fallback reply.
// It is never matched as a keyword.
const DefaultKey = "default"

// Fixed replies used when the knowledge base cannot answer.
const (
	NeedMoreDetailReply = "Can you please provide more details so I can help?"
	StillLearningReply  = "I am still learning and cannot answer that right now."
)

// Entry is a single keyword phrase and its reply
type Entry struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Reply   string `json:"reply" yaml:"reply"`
}

// Terms returns the whitespace-delimited terms of the keyword phrase
func (e Entry) Terms() []string {
	return strings.Fields(e.Keyword)
}

// IsDefault reports whether the entry is the fallback entry
func (e Entry) IsDefault() bool {
	return e.Keyword == DefaultKey
}

// FAQPair is a question and the answer it maps to. Position in a []FAQPair
// is the join key between embeddings and answers.
type FAQPair struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// KnowledgeBase maps keyword phrases to replies and remembers insertion
// order, which decides match priority.
type KnowledgeBase struct {
	entries []Entry
	byKey   map[string]int
}

// NewKnowledgeBase creates a knowledge base from entries in order.
// A repeated keyword replaces the earlier reply but keeps its position.
func NewKnowledgeBase(entries ...Entry) *KnowledgeBase {
	kb := &KnowledgeBase{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		kb.Set(e.Keyword, e.Reply)
	}
	return kb
}

// Set adds or replaces the reply for keyword
func (kb *KnowledgeBase) Set(keyword, reply string) {
	if kb.byKey == nil {
		kb.byKey = make(map[string]int)
	}
	if i, ok := kb.byKey[keyword]; ok {
		kb.entries[i].Reply = reply
		return
	}
	kb.byKey[keyword] = len(kb.entries)
	kb.entries = append(kb.entries, Entry{Keyword: keyword, Reply: reply})
}

// Get returns the reply stored for keyword
func (kb *KnowledgeBase) Get(keyword string) (string, bool) {
	if kb == nil {
		return "", false
	}
	i, ok := kb.byKey[keyword]
	if !ok {
		return "", false
	}
	return kb.entries[i].Reply, true
}

// Fallback returns the reply stored under DefaultKey
func (kb *KnowledgeBase) Fallback() (string, bool) {
	return kb.Get(DefaultKey)
}

// Entries returns a copy of the entries in iteration order
func (kb *KnowledgeBase) Entries() []Entry {
	if kb == nil {
		return nil
	}
	out := make([]Entry, len(kb.entries))
	copy(out, kb.entries)
	return out
}

// Len returns the number of entries, including the default entry
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.entries)
}

// Pairs derives FAQ pairs from the non-default entries, using the keyword
// phrase as the question.
func (kb *KnowledgeBase) Pairs() []FAQPair {
	if kb == nil {
		return nil
	}
	pairs := make([]FAQPair, 0, len(kb.entries))
	for _, e := range kb.entries {
		if e.IsDefault() {
			continue
		}
		pairs = append(pairs, FAQPair{Question: e.Keyword, Answer: e.Reply})
	}
	return pairs
}

// Questions returns the questions of pairs in order
func Questions(pairs []FAQPair) []string {
	questions := make([]string, len(pairs))
	for i, p := range pairs {
		questions[i] = p.Question
	}
	return questions
}

// MatchResult describes the outcome of a similarity lookup
type MatchResult struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Answer  string  `json:"answer"`
	Matched bool    `json:"matched"`
}
