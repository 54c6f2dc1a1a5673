package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark-chris/supportbot/internal/config"
	"github.com/mark-chris/supportbot/internal/httpx"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

var (
	ErrMissingAPIKey = errors.New("embeddings API key not provided")
	ErrNonOKResponse = errors.New("non-OK response from embeddings API")
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

// Vectorizer embeds documents with an OpenAI-compatible /embeddings
// endpoint. The remote model is pre-trained, so FitTransform and Transform
// behave the same.
type Vectorizer struct {
	client  *fasthttp.Client
	cfg     config.OpenAIConfig
	breaker httpx.CircuitBreaker
	logger  *zap.Logger
}

// NewVectorizer creates a vectorizer. A nil breaker gets one built from cfg.
func NewVectorizer(client *fasthttp.Client, cfg config.OpenAIConfig, breaker httpx.CircuitBreaker, logger *zap.Logger) *Vectorizer {
	if client == nil {
		client = &fasthttp.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if breaker == nil {
		breaker = httpx.NewCircuitBreaker("openai-embeddings", cfg.Timeout, cfg.MaxFailures)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vectorizer{client: client, cfg: cfg, breaker: breaker, logger: logger}
}

func (v *Vectorizer) FitTransform(documents []string) ([][]float64, error) {
	return v.embed(documents)
}

func (v *Vectorizer) Transform(documents []string) ([][]float64, error) {
	return v.embed(documents)
}

func (v *Vectorizer) embed(documents []string) ([][]float64, error) {
	if len(documents) == 0 {
		return [][]float64{}, nil
	}
	if v.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(embeddingRequest{Model: v.cfg.Model, Input: documents})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request payload: %w", err)
	}

	var respBody []byte
	err = v.breaker.Execute(func() error {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)

		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(strings.TrimRight(v.cfg.BaseURL, "/") + "/embeddings")
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)
		req.SetBody(body)

		if err := v.client.DoTimeout(req, resp, v.cfg.Timeout); err != nil {
			v.logger.Error("error performing HTTP request for embeddings", zap.Error(err))
			return err
		}

		if resp.StatusCode() != fasthttp.StatusOK {
			v.logger.Error("non-OK response from embeddings API",
				zap.Int("status", resp.StatusCode()),
				zap.ByteString("response", resp.Body()))
			return fmt.Errorf("%w: %d", ErrNonOKResponse, resp.StatusCode())
		}

		respBody = append([]byte(nil), resp.Body()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}

	sort.SliceStable(embResp.Data, func(i, j int) bool {
		return embResp.Data[i].Index < embResp.Data[j].Index
	})

	vectors := make([][]float64, 0, len(embResp.Data))
	for _, d := range embResp.Data {
		vectors = append(vectors, d.Embedding)
	}

	v.logger.Debug("embedded documents",
		zap.Int("documents", len(documents)),
		zap.Int("embeddings", len(vectors)))

	return vectors, nil
}
