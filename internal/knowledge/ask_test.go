package knowledge

import (
	"errors"
	"testing"
)

func newTestIndex(pairs []FAQPair) *Index {
	idx := NewIndex()
	idx.Build(newTestKnowledge(), pairs)
	return idx
}

func stubFactory(v Vectorizer) VectorizerFactory {
	return func() (Vectorizer, error) { return v, nil }
}

func floatPtr(f float64) *float64 { return &f }

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyHybrid, false},
		{"keyword", StrategyKeyword, false},
		{" Similarity ", StrategySimilarity, false},
		{"HYBRID", StrategyHybrid, false},
		{"fuzzy", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("expected ErrUnknownStrategy, got %v", err)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsk_Keyword(t *testing.T) {
	idx := newTestIndex(nil)

	result, err := Ask(idx, AskOptions{Question: "How do I reset my password?", Strategy: StrategyKeyword})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if !result.Matched || result.Keyword != "reset password" {
		t.Errorf("expected match on reset password, got %+v", result)
	}
	if result.Reply != "To reset, click the link and follow the prompts." {
		t.Errorf("unexpected reply %q", result.Reply)
	}
	if result.Score != nil {
		t.Error("keyword strategy must not report a score")
	}
}

func TestAsk_KeywordUnmatched(t *testing.T) {
	idx := newTestIndex(nil)

	result, err := Ask(idx, AskOptions{Question: "weather", Strategy: StrategyKeyword})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if result.Matched || result.Reply != "I am sending this to an agent." {
		t.Errorf("expected default reply, got %+v", result)
	}
}

func TestAsk_Similarity(t *testing.T) {
	v := &stubVectorizer{knowledge: [][]float64{{1, 0}, {0, 1}}, question: []float64{0, 1}}
	idx := newTestIndex(testPairs)

	result, err := Ask(idx, AskOptions{
		Question:      "invoice trouble",
		Strategy:      StrategySimilarity,
		NewVectorizer: stubFactory(v),
	})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if !result.Matched || result.Reply != "Contact billing." {
		t.Errorf("expected billing answer, got %+v", result)
	}
	if result.Score == nil || *result.Score != 1 {
		t.Errorf("expected score 1, got %v", result.Score)
	}
}

func TestAsk_SimilarityFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		want     string
	}{
		{"knowledge default", "", "I am sending this to an agent."},
		{"explicit fallback", "Try the help center.", "Try the help center."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVectorizer{knowledge: [][]float64{{1, 0}, {0, 1}}, question: []float64{1, 1}}
			result, err := Ask(newTestIndex(testPairs), AskOptions{
				Question:      "something",
				Strategy:      StrategySimilarity,
				Threshold:     floatPtr(0.9),
				Fallback:      tt.fallback,
				NewVectorizer: stubFactory(v),
			})
			if err != nil {
				t.Fatalf("Ask() failed: %v", err)
			}
			if result.Matched || result.Reply != tt.want {
				t.Errorf("expected fallback %q, got %+v", tt.want, result)
			}
			if result.Score == nil {
				t.Error("expected best candidate score to be reported")
			}
		})
	}
}

func TestAsk_ZeroThresholdIsHonored(t *testing.T) {
	v := &stubVectorizer{knowledge: [][]float64{{1, 0}}, question: []float64{1, 1}}
	idx := NewIndex()
	idx.Build(NewKnowledgeBase(), testPairs[:1])

	result, err := Ask(idx, AskOptions{
		Question:      "q",
		Strategy:      StrategySimilarity,
		Threshold:     floatPtr(0),
		NewVectorizer: stubFactory(v),
	})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if !result.Matched {
		t.Errorf("expected match with threshold 0, got %+v", result)
	}
}

func TestAsk_HybridPrefersKeyword(t *testing.T) {
	v := &stubVectorizer{knowledge: [][]float64{{1, 0}, {0, 1}}, question: []float64{0, 1}}
	idx := newTestIndex(testPairs)

	result, err := Ask(idx, AskOptions{Question: "billing help", NewVectorizer: stubFactory(v)})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if result.Strategy != StrategyHybrid {
		t.Errorf("expected hybrid strategy by default, got %q", result.Strategy)
	}
	if result.Keyword != "billing" || result.Reply != "Contact billing." {
		t.Errorf("expected keyword match, got %+v", result)
	}
	if v.calls != 0 {
		t.Errorf("expected vectorizer unused on keyword hit, got %d calls", v.calls)
	}
}

func TestAsk_HybridFallsBackToSimilarity(t *testing.T) {
	v := &stubVectorizer{knowledge: [][]float64{{1, 0}, {0, 1}}, question: []float64{1, 0}}
	idx := newTestIndex(testPairs)

	result, err := Ask(idx, AskOptions{Question: "forgot my login", NewVectorizer: stubFactory(v)})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if !result.Matched || result.Reply != "Click the Reset link." || result.Keyword != "" {
		t.Errorf("expected similarity match, got %+v", result)
	}
}

func TestAsk_BlankQuestion(t *testing.T) {
	for _, strategy := range []Strategy{StrategyKeyword, StrategyHybrid} {
		result, err := Ask(newTestIndex(nil), AskOptions{Question: "  ", Strategy: strategy})
		if err != nil {
			t.Fatalf("Ask() failed: %v", err)
		}
		if result.Reply != NeedMoreDetailReply {
			t.Errorf("%s: expected %q, got %q", strategy, NeedMoreDetailReply, result.Reply)
		}
	}
}

func TestAsk_Errors(t *testing.T) {
	idx := newTestIndex(testPairs)

	if _, err := Ask(idx, AskOptions{Question: "q", Strategy: "fuzzy"}); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	factoryErr := errors.New("no model")
	_, err := Ask(idx, AskOptions{
		Question:      "q",
		Strategy:      StrategySimilarity,
		NewVectorizer: func() (Vectorizer, error) { return nil, factoryErr },
	})
	if !errors.Is(err, factoryErr) {
		t.Errorf("expected factory error, got %v", err)
	}

	v := &stubVectorizer{knowledge: [][]float64{{1, 0}}, question: []float64{1, 0}}
	_, err = Ask(idx, AskOptions{Question: "q", Strategy: StrategySimilarity, NewVectorizer: stubFactory(v)})
	if !errors.Is(err, ErrEmbeddingCountMismatch) {
		t.Errorf("expected ErrEmbeddingCountMismatch, got %v", err)
	}
}

func TestAsk_DefaultVectorizer(t *testing.T) {
	idx := newTestIndex([]FAQPair{
		{Question: "How do I reset my password?", Answer: "Click the Reset link."},
		{Question: "Where can I download invoices?", Answer: "Billing > History."},
	})

	result, err := Ask(idx, AskOptions{Question: "download invoices", Strategy: StrategySimilarity})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if result.Reply != "Billing > History." {
		t.Errorf("expected invoice answer, got %q", result.Reply)
	}
}

func TestAsk_TokenCount(t *testing.T) {
	result, err := Ask(newTestIndex(nil), AskOptions{
		Question:     "billing",
		Strategy:     StrategyKeyword,
		TokenCounter: &TokenCounter{},
	})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if want := len("Contact billing.") / 4; result.TokenCount != want {
		t.Errorf("expected approximate token count %d, got %d", want, result.TokenCount)
	}
}
