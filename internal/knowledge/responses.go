package knowledge

import (
	"strings"
)

// NormalizeQuestion trims and lowercases a raw question
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// MatchKeyword returns the first non-default entry whose terms all appear
// as substrings of the normalized question. Containment is not
// word-boundary aware: "pass" matches inside "password".
func MatchKeyword(kb *KnowledgeBase, question string) (Entry, bool) {
	normalized := NormalizeQuestion(question)
	if normalized == "" || kb == nil {
		return Entry{}, false
	}

	for _, e := range kb.entries {
		if e.IsDefault() {
			continue
		}
		if containsAllTerms(normalized, e.Terms()) {
			return e, true
		}
	}

	return Entry{}, false
}

// ChooseResponse picks a reply for question using keyword containment.
// Blank questions ask for more detail; unmatched questions get the default
// entry, or StillLearningReply when there is none.
func ChooseResponse(kb *KnowledgeBase, question string) string {
	if NormalizeQuestion(question) == "" {
		return NeedMoreDetailReply
	}

	if e, ok := MatchKeyword(kb, question); ok {
		return e.Reply
	}

	return fallbackReply(kb)
}

// fallbackReply returns the non-empty default reply or StillLearningReply
func fallbackReply(kb *KnowledgeBase) string {
	if fallback, ok := kb.Fallback(); ok && fallback != "" {
		return fallback
	}
	return StillLearningReply
}

// containsAllTerms reports whether every term is a substring of text.
// An empty term list never matches.
func containsAllTerms(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}
