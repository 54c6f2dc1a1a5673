package knowledge

import (
	"fmt"
	"strings"
)

// minTermLength is the shortest term that is unlikely to match inside
// unrelated words
const minTermLength = 3

// ValidationError represents a single validation error
type ValidationError struct {
	Keyword  string
	Field    string
	Message  string
	Severity string // "error" or "warning"
}

func (e ValidationError) String() string {
	return fmt.Sprintf("[%s] %q: %s - %s", e.Severity, e.Keyword, e.Field, e.Message)
}

// ValidationResult holds all validation errors for a knowledge source
type ValidationResult struct {
	Source   string
	IsValid  bool
	Errors   []ValidationError
	Warnings []ValidationError
}

func newValidationResult(source string) ValidationResult {
	return ValidationResult{
		Source:   source,
		IsValid:  true,
		Errors:   make([]ValidationError, 0),
		Warnings: make([]ValidationError, 0),
	}
}

// ValidateKnowledge checks a knowledge base for entries that can never match
// or that match more than their author likely intended.
func ValidateKnowledge(kb *KnowledgeBase) ValidationResult {
	result := newValidationResult("knowledge")

	fallback, hasFallback := kb.Fallback()
	if !hasFallback {
		result.addWarning(DefaultKey, "default", "no default entry; unmatched questions get the built-in reply")
	} else if fallback == "" {
		result.addWarning(DefaultKey, "default", "empty default reply is ignored")
	}

	var earlier []Entry
	for _, e := range kb.Entries() {
		if e.IsDefault() {
			continue
		}

		terms := e.Terms()
		switch {
		case e.Keyword == "":
			result.addError(e.Keyword, "keyword", "required field is empty")
		case len(terms) == 0:
			result.addError(e.Keyword, "keyword", "has no terms and can never match")
		case e.Keyword != NormalizeQuestion(e.Keyword):
			result.addWarning(e.Keyword, "keyword", "not lowercase and trimmed; uppercase terms never match")
		}

		if e.Reply == "" {
			result.addError(e.Keyword, "reply", "required field is empty")
		}

		for _, term := range terms {
			if len([]rune(term)) < minTermLength {
				result.addWarning(e.Keyword, "keyword",
					fmt.Sprintf("term %q is short and matches inside other words", term))
			}
		}

		if len(terms) > 0 {
			for _, prev := range earlier {
				if isSubset(prev.Terms(), terms) {
					result.addWarning(e.Keyword, "keyword",
						fmt.Sprintf("shadowed by earlier keyword %q and can never be selected", prev.Keyword))
					break
				}
			}
			earlier = append(earlier, e)
		}
	}

	return result
}

// ValidateFAQPairs checks FAQ pairs used for similarity retrieval
func ValidateFAQPairs(pairs []FAQPair) ValidationResult {
	result := newValidationResult("faq")

	seen := make(map[string]int, len(pairs))
	for i, p := range pairs {
		field := fmt.Sprintf("pairs[%d]", i)
		if strings.TrimSpace(p.Question) == "" {
			result.addError(p.Question, field+".question", "required field is empty")
		}
		if strings.TrimSpace(p.Answer) == "" {
			result.addError(p.Question, field+".answer", "required field is empty")
		}

		normalized := NormalizeQuestion(p.Question)
		if first, ok := seen[normalized]; ok && normalized != "" {
			result.addWarning(p.Question, field+".question",
				fmt.Sprintf("duplicates pairs[%d]; the earlier pair wins ties", first))
			continue
		}
		seen[normalized] = i
	}

	return result
}

// isSubset reports whether every term of sub is contained in terms, which
// means a key with sub terms matches whenever a key with terms does.
func isSubset(sub, terms []string) bool {
	if len(sub) == 0 {
		return false
	}
	for _, s := range sub {
		found := false
		for _, t := range terms {
			if strings.Contains(t, s) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *ValidationResult) addError(keyword, field, message string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{
		Keyword:  keyword,
		Field:    field,
		Message:  message,
		Severity: "error",
	})
}

func (r *ValidationResult) addWarning(keyword, field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{
		Keyword:  keyword,
		Field:    field,
		Message:  message,
		Severity: "warning",
	})
}
