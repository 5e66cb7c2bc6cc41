package pricing

// TokenUsage holds the token counters of a single assistant response, as
// recorded in the conversation log. Zero values stand in for counters the
// log line did not carry.
type TokenUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

// Total returns input + output tokens (cache traffic excluded).
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Per-million-token prices in USD. Costs derived from these are local
// estimates, not the provider's billed amounts.
const (
	InputPerMillion       = 3.00
	OutputPerMillion      = 15.00
	CacheReadPerMillion   = 0.30
	CacheCreatePerMillion = 3.75
)

// Cost converts a usage record into an estimated USD amount.
func Cost(u TokenUsage) float64 {
	cost := float64(u.InputTokens) * InputPerMillion / 1_000_000
	cost += float64(u.OutputTokens) * OutputPerMillion / 1_000_000
	cost += float64(u.CacheReadInputTokens) * CacheReadPerMillion / 1_000_000
	cost += float64(u.CacheCreationInputTokens) * CacheCreatePerMillion / 1_000_000
	return cost
}
