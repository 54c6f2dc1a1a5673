package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark-chris/supportbot/internal/knowledge"
)

// TestFixture holds test resources and provides cleanup
type TestFixture struct {
	Dir           string              // Temporary directory containing the fixture files
	KnowledgePath string              // Knowledge base JSON file
	FAQPath       string              // FAQ pairs JSON file
	Entries       []knowledge.Entry   // Knowledge entries in file order
	Pairs         []knowledge.FAQPair // FAQ pairs in file order
	Cleanup       func()              // Cleanup function to remove temporary resources
}

// Replies used by the fixture, shared by its keyword entries and FAQ pairs
const (
	ResetReply    = "Use the Forgot Password link on the sign-in page."
	RefundReply   = "Refunds are issued within 5 business days."
	BillingReply  = "Invoices are under Settings > Billing."
	FallbackReply = "Let me connect you with a human agent."
)

// SetupTestKnowledge writes a small knowledge base and FAQ file to a
// temporary directory
func SetupTestKnowledge(tb testing.TB) *TestFixture {
	tb.Helper()

	tmpDir := tb.TempDir()

	entries := []knowledge.Entry{
		{Keyword: "reset password", Reply: ResetReply},
		{Keyword: "refund", Reply: RefundReply},
		{Keyword: "billing", Reply: BillingReply},
		{Keyword: knowledge.DefaultKey, Reply: FallbackReply},
	}
	pairs := []knowledge.FAQPair{
		{Question: "How do I reset my password?", Answer: ResetReply},
		{Question: "Can I get my money back?", Answer: RefundReply},
		{Question: "Where are my invoices?", Answer: BillingReply},
	}

	knowledgePath := filepath.Join(tmpDir, "knowledge_base.json")
	if err := WriteKnowledgeFile(knowledgePath, entries); err != nil {
		tb.Fatalf("Failed to write knowledge file: %v", err)
	}

	faqPath := filepath.Join(tmpDir, "faq.json")
	if err := WriteFAQFile(faqPath, pairs); err != nil {
		tb.Fatalf("Failed to write FAQ file: %v", err)
	}

	return &TestFixture{
		Dir:           tmpDir,
		KnowledgePath: knowledgePath,
		FAQPath:       faqPath,
		Entries:       entries,
		Pairs:         pairs,
		Cleanup:       func() {}, // t.TempDir() handles cleanup automatically
	}
}

// WriteKnowledgeFile writes entries as a knowledge base JSON object,
// preserving their order
func WriteKnowledgeFile(path string, entries []knowledge.Entry) error {
	data, err := knowledge.MarshalKnowledge(knowledge.NewKnowledgeBase(entries...))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteFAQFile writes pairs as a JSON list of question/answer records
func WriteFAQFile(path string, pairs []knowledge.FAQPair) error {
	records := make([]map[string]string, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, map[string]string{
			"question": p.Question,
			"answer":   p.Answer,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
