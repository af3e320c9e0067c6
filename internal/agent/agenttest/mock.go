// Package agenttest provides a testify mock of agent.Client.
package agenttest

import (
	"context"

	"anemo-backend/internal/agent"

	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

var _ agent.Client = (*Client)(nil)

func (m *Client) Generate(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Response), args.Error(1)
}

// Text is a shorthand for a plain textual model answer.
func Text(s string) *agent.Response {
	return &agent.Response{Text: s}
}

// Flow matches requests issued by the named flow.
func Flow(name string) any {
	return mock.MatchedBy(func(req *agent.Request) bool { return req.Flow == name })
}
