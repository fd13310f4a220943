package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/group-matcher/internal/prompts"
	"github.com/jonathan/group-matcher/internal/rerank"
	"github.com/jonathan/group-matcher/internal/schemas"
	"go.uber.org/zap"
)

const maxLogPreview = 200

// Ranker implements the external ranking collaborator on top of an LLM
// generator. Responses are schema-validated before being mapped back.
type Ranker struct {
	generator Generator
	logger    *zap.Logger
}

// NewRanker creates a ranking client backed by the given generator.
func NewRanker(generator Generator, logger *zap.Logger) *Ranker {
	return &Ranker{generator: generator, logger: logger}
}

// Rank sends one candidate batch to the model and parses its judgement.
func (r *Ranker) Rank(ctx context.Context, req *rerank.Request) (*rerank.Response, error) {
	if req == nil || len(req.Candidates) == 0 {
		return &rerank.Response{}, nil
	}

	prompt, err := buildRankPrompt(req)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("ranking request",
		zap.String("query_type", req.QueryType),
		zap.Int("candidates", len(req.Candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := r.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("ranking response",
		zap.String("query_type", req.QueryType),
		zap.String("response_preview", truncateForLog(raw, maxLogPreview)),
	)

	return parseRankResponse(raw)
}

// buildRankPrompt renders the prompt template for one ranking request. The
// pick-top-candidate template is used for staffing picks where exactly one
// winner is wanted.
func buildRankPrompt(req *rerank.Request) (string, error) {
	key := "rank-candidates"
	if req.QueryType == "staffing" {
		key = "pick-top-candidate"
	}
	template, err := prompts.Get("ranking.json", key)
	if err != nil {
		return "", err
	}

	candidatesJSON, err := json.MarshalIndent(req.Candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidates: %w", err)
	}

	return prompts.Format(template, map[string]string{
		"QueryType":  req.QueryType,
		"QueryText":  req.QueryText,
		"Context":    formatContext(req.Context),
		"Candidates": string(candidatesJSON),
	}), nil
}

// formatContext renders the context map as stable key: value lines.
func formatContext(context map[string]string) string {
	if len(context) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", key, context[key]))
	}
	return strings.Join(lines, "\n")
}

// parseRankResponse validates and decodes the model's JSON.
func parseRankResponse(raw string) (*rerank.Response, error) {
	cleaned := CleanJSONBlock(raw)

	if err := schemas.ValidateRankResponse(cleaned); err != nil {
		return nil, fmt.Errorf("ranking response failed validation: %w", err)
	}

	var resp rerank.Response
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse ranking response: %w", err)
	}
	return &resp, nil
}

// truncateForLog shortens long payloads for debug logging.
func truncateForLog(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
