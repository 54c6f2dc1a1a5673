package knowledge

import (
	"strings"
	"testing"
)

func hasIssue(issues []ValidationError, keyword, substr string) bool {
	for _, issue := range issues {
		if issue.Keyword == keyword && strings.Contains(issue.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateKnowledge_Valid(t *testing.T) {
	result := ValidateKnowledge(newTestKnowledge())

	if !result.IsValid {
		t.Errorf("expected valid knowledge, got errors: %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected no errors, got %v", result.Errors)
	}
}

func TestValidateKnowledge_Errors(t *testing.T) {
	kb := NewKnowledgeBase(
		Entry{Keyword: "", Reply: "empty key"},
		Entry{Keyword: "   ", Reply: "blank key"},
		Entry{Keyword: "refund", Reply: ""},
		Entry{Keyword: "default", Reply: "hold"},
	)

	result := ValidateKnowledge(kb)

	if result.IsValid {
		t.Fatal("expected invalid knowledge")
	}
	if !hasIssue(result.Errors, "", "required field is empty") {
		t.Error("expected error for empty keyword")
	}
	if !hasIssue(result.Errors, "   ", "can never match") {
		t.Error("expected error for keyword without terms")
	}
	if !hasIssue(result.Errors, "refund", "required field is empty") {
		t.Error("expected error for empty reply")
	}
}

func TestValidateKnowledge_Warnings(t *testing.T) {
	tests := []struct {
		name    string
		kb      *KnowledgeBase
		keyword string
		message string
	}{
		{
			name:    "missing default",
			kb:      NewKnowledgeBase(Entry{Keyword: "billing", Reply: "x"}),
			keyword: DefaultKey,
			message: "no default entry",
		},
		{
			name:    "empty default",
			kb:      NewKnowledgeBase(Entry{Keyword: "default", Reply: ""}),
			keyword: DefaultKey,
			message: "empty default reply",
		},
		{
			name:    "unnormalized keyword",
			kb:      NewKnowledgeBase(Entry{Keyword: "Refund", Reply: "x"}),
			keyword: "Refund",
			message: "not lowercase",
		},
		{
			name:    "short term",
			kb:      NewKnowledgeBase(Entry{Keyword: "id card", Reply: "x"}),
			keyword: "id card",
			message: `term "id" is short`,
		},
		{
			name: "shadowed by earlier key",
			kb: NewKnowledgeBase(
				Entry{Keyword: "password", Reply: "x"},
				Entry{Keyword: "reset password", Reply: "y"},
			),
			keyword: "reset password",
			message: `shadowed by earlier keyword "password"`,
		},
		{
			name: "shadowed through substring",
			kb: NewKnowledgeBase(
				Entry{Keyword: "pass", Reply: "x"},
				Entry{Keyword: "password", Reply: "y"},
			),
			keyword: "password",
			message: "shadowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateKnowledge(tt.kb)
			if !hasIssue(result.Warnings, tt.keyword, tt.message) {
				t.Errorf("expected warning %q for %q, got %v", tt.message, tt.keyword, result.Warnings)
			}
		})
	}
}

func TestValidateKnowledge_LaterGeneralKeyNotShadowed(t *testing.T) {
	kb := NewKnowledgeBase(
		Entry{Keyword: "reset password", Reply: "x"},
		Entry{Keyword: "password", Reply: "y"},
		Entry{Keyword: "default", Reply: "z"},
	)

	result := ValidateKnowledge(kb)
	if hasIssue(result.Warnings, "password", "shadowed") {
		t.Errorf("general key after a specific one is reachable, got %v", result.Warnings)
	}
}

func TestValidateFAQPairs(t *testing.T) {
	pairs := []FAQPair{
		{Question: "How do I reset?", Answer: "Click reset."},
		{Question: " ", Answer: "no question"},
		{Question: "billing", Answer: ""},
		{Question: "how do i reset?", Answer: "Again."},
	}

	result := ValidateFAQPairs(pairs)

	if result.IsValid {
		t.Fatal("expected invalid FAQ pairs")
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", result.Errors)
	}
	if !hasIssue(result.Warnings, "how do i reset?", "duplicates pairs[0]") {
		t.Errorf("expected duplicate warning, got %v", result.Warnings)
	}
}

func TestValidationError_String(t *testing.T) {
	e := ValidationError{Keyword: "refund", Field: "reply", Message: "required field is empty", Severity: "error"}

	want := `[error] "refund": reply - required field is empty`
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
