package llm

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// Generator produces schema-constrained JSON text from an instruction prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Invoker wraps a Generator with the retry policy. It holds no caller state
// and mutates nothing; callers get a raw JSON string or a classified error.
type Invoker struct {
	gen    Generator
	policy Policy
	sleep  SleepFunc
}

// NewInvoker creates an Invoker around gen with the given policy.
func NewInvoker(gen Generator, policy Policy) *Invoker {
	return &Invoker{gen: gen, policy: policy, sleep: Sleep}
}

// Generate issues the request, retrying transient failures per the policy.
func (iv *Invoker) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	var out string
	err := iv.policy.Do(ctx, iv.sleep, func(ctx context.Context) error {
		raw, err := iv.gen.GenerateJSON(ctx, prompt, schema)
		if err != nil {
			return Normalize(err)
		}
		out = raw
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
