package ai

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter provides thread-safe token counting for chat completions,
// used for usage metrics only. Counting failures fall back to a rough
// chars/4 estimate rather than failing the call.
type TokenCounter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewTokenCounter constructs a TokenCounter.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{cache: make(map[string]*tiktoken.Tiktoken)}
}

func (c *TokenCounter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	norm := normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.cache[norm]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[norm]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(norm)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.cache[norm] = enc
	return enc, nil
}

func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	switch {
	case strings.Contains(model, "gpt-4"):
		return "gpt-4"
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		// cl100k_base is a reasonable approximation for non-OpenAI models
		return "gpt-4"
	}
}

// CountPrompt counts tokens for a system/user message pair including the
// per-message overhead used by OpenAI-compatible chat APIs.
func (c *TokenCounter) CountPrompt(systemPrompt, userPrompt, model string) int {
	enc, err := c.encodingFor(model)
	if err != nil {
		return (len(systemPrompt) + len(userPrompt)) / 4
	}
	const tokensPerMessage = 4 // 3 framing + 1 role
	n := 0
	n += tokensPerMessage + len(enc.Encode(systemPrompt, nil, nil))
	n += tokensPerMessage + len(enc.Encode(userPrompt, nil, nil))
	n += 3 // assistant priming
	return n
}

// CountCompletion counts tokens in a completion.
func (c *TokenCounter) CountCompletion(completion, model string) int {
	enc, err := c.encodingFor(model)
	if err != nil {
		return len(completion) / 4
	}
	return len(enc.Encode(completion, nil, nil))
}
