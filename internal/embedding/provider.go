// Package embedding wraps the OpenAI-compatible embeddings API. Embeddings
// are a best-effort enhancement: every failure path returns nil instead of
// an error so that note writes never abort on provider trouble.
package embedding

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// MaxInputChars is the ceiling applied before submission, to stay under the
// provider's token limits. Longer input is truncated, not rejected.
const MaxInputChars = 32000

// DefaultModel is used when the config names no model.
const DefaultModel = "text-embedding-3-small"

// Provider converts text to a fixed-length vector.
type Provider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *slog.Logger
}

// Config holds the provider settings.
type Config struct {
	// APIKey enables the provider; empty means embeddings are skipped.
	APIKey string
	// BaseURL overrides the API endpoint for OpenAI-compatible providers.
	BaseURL string
	// Model names the embedding model; empty means DefaultModel.
	Model string
	// Dimensions requests a reduced vector size when > 0.
	Dimensions int
}

// New creates a provider. A provider with no credential is still valid; it
// answers every Embed call with nil.
func New(cfg Config, logger *slog.Logger) *Provider {
	p := &Provider{
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     logger,
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		p.client = openai.NewClientWithConfig(clientCfg)
	}
	return p
}

// Available reports whether a credential is configured.
func (p *Provider) Available() bool {
	return p.client != nil
}

// Embed returns a vector for text, or nil when the credential is absent,
// the trimmed text is empty, or the call fails for any reason.
func (p *Provider) Embed(ctx context.Context, text string) []float32 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if p.client == nil {
		p.logger.Debug("embedding skipped: no credential configured")
		return nil
	}
	if utf8.RuneCountInString(text) > MaxInputChars {
		p.logger.Warn("embedding input truncated",
			slog.Int("length", utf8.RuneCountInString(text)), slog.Int("limit", MaxInputChars))
		text = string([]rune(text)[:MaxInputChars])
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		p.logger.Warn("embedding request failed", slog.String("error", err.Error()))
		return nil
	}
	if len(resp.Data) == 0 {
		p.logger.Warn("embedding response contained no data")
		return nil
	}
	p.logger.Debug("embedding generated",
		slog.Int("dimensions", len(resp.Data[0].Embedding)))
	return resp.Data[0].Embedding
}
