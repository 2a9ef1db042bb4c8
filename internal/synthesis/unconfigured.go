package synthesis

import "context"

// Unconfigured stands in when no API key is set. It never fabricates content.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "none" }

func (Unconfigured) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
