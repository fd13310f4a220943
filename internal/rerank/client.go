// Package rerank adjusts heuristic suggestion order using an external
// LLM-backed ranking service, falling back to the heuristic order whenever
// the service fails or has no opinion.
package rerank

import "context"

// Candidate is one lightweight record sent to the ranking service.
type Candidate struct {
	Key      string            `json:"key"`
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Request is a single batched ranking call.
type Request struct {
	QueryType  string            `json:"query_type"`
	QueryText  string            `json:"query_text"`
	Candidates []Candidate       `json:"candidates"`
	Context    map[string]string `json:"context,omitempty"`
}

// RankedItem is the service's judgement for one candidate, matched back by key.
type RankedItem struct {
	Key           string   `json:"key"`
	FinalScore    float64  `json:"final_score"` // 0-100
	Reason        string   `json:"reason,omitempty"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	BalanceNote   string   `json:"balance_note,omitempty"`
}

// Response holds the service's ranked items. An empty Items list means
// "no opinion" and triggers heuristic fallback.
type Response struct {
	Items []RankedItem `json:"items"`
}

// Client is the external ranking collaborator.
type Client interface {
	Rank(ctx context.Context, req *Request) (*Response, error)
}
