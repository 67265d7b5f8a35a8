package telephony

import (
	"context"
	"fmt"
	"time"
)

// StubProvider fakes call setup for development; pair with manual webhook posts.
type StubProvider struct{}

func (s *StubProvider) Connect(ctx context.Context, req CallRequest) (*CallResponse, error) {
	return &CallResponse{
		ProviderCallID: fmt.Sprintf("stub_%d", time.Now().UnixNano()),
		InitialStatus:  "queued",
	}, nil
}
