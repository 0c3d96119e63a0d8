package llm

import (
	"context"
)

// Message is one turn of a prompt in a provider-agnostic format.
type Message struct {
	Role    string // "user", "model", "system"
	Content string
}

const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// Option sets optional generation parameters.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // override the provider's default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider is the contract for a text-generation backend. Calls are
// synchronous, fallible and potentially slow (seconds); callers that cannot
// block must invoke them from background work.
type Provider interface {
	// Complete sends the message sequence to the model and returns the text
	// of the model's reply.
	Complete(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

// CompletePrompt is a convenience wrapper for the common system+user shape.
func CompletePrompt(ctx context.Context, p Provider, system, prompt string, opts ...Option) (string, error) {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})
	return p.Complete(ctx, messages, opts...)
}
