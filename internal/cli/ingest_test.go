package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark-chris/supportbot/internal/knowledge"
)

func TestIngestCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "export.json")
	records := `[
  {"prompt": "  How do I Reset my password? ", "response": "Use the reset link."},
  {"prompt": "Missing answer"},
  {"prompt": "Refund policy", "response": ["Refunds take", "5 days."]},
  {"prompt": "how do i reset my password?", "response": "Use the new reset link."}
]`
	if err := os.WriteFile(input, []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "nested", "knowledge_base.json")

	out, err := execute(t, "ingest",
		"--input", input,
		"--output", output,
		"--question-field", "prompt",
		"--answer-field", "response",
		// Knowledge is not loaded for ingest
		"-k", "/nonexistent/knowledge_base.json",
	)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !strings.Contains(out, "Ingested 3 FAQ pairs into "+output) {
		t.Errorf("unexpected output: %q", out)
	}

	kb, err := knowledge.NewLoader(output).LoadKnowledge()
	if err != nil {
		t.Fatalf("failed to load ingested knowledge: %v", err)
	}

	want := []knowledge.Entry{
		{Keyword: "how do i reset my password?", Reply: "Use the new reset link."},
		{Keyword: "refund policy", Reply: "Refunds take 5 days."},
	}
	entries := kb.Entries()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestIngestCommand_RequiresInput(t *testing.T) {
	_, err := execute(t, "ingest", "--output", filepath.Join(t.TempDir(), "kb.json"))
	if err == nil {
		t.Fatal("expected error without --input")
	}
	if !strings.Contains(err.Error(), "input") {
		t.Errorf("expected error to mention input, got %v", err)
	}
}

func TestIngestCommand_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(input, []byte(`{"not": "a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "ingest", "--input", input, "--output", filepath.Join(dir, "kb.json"))
	if err == nil {
		t.Fatal("expected error for non-list FAQ file")
	}
	if !strings.Contains(err.Error(), "failed to read FAQ") {
		t.Errorf("expected 'failed to read FAQ' error, got %v", err)
	}
}
