package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"javadocgen/internal/port/outbound"
)

// Responder computes the response for one request.
type Responder func(ctx context.Context, request outbound.GenerationRequest) (string, error)

// MockCommentGenerator is an in-memory CommentGenerator for development and tests.
// Without a Responder it answers with a short comment naming the declaration.
type MockCommentGenerator struct {
	Responder Responder
	// Delay is applied before every response and honors ctx cancellation.
	Delay time.Duration

	mu       sync.Mutex
	requests []outbound.GenerationRequest

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	stops       atomic.Int32
}

// NewMockCommentGenerator creates a mock generator with the default responder.
func NewMockCommentGenerator() *MockCommentGenerator {
	return &MockCommentGenerator{}
}

// GenerateComment records request and returns the scripted response.
func (m *MockCommentGenerator) GenerateComment(ctx context.Context, request outbound.GenerationRequest) (string, error) {
	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.maxInFlight.Load()
		if current <= peak || m.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if m.Responder != nil {
		return m.Responder(ctx, request)
	}
	return DefaultResponse(request), nil
}

// Stop counts stop requests.
func (m *MockCommentGenerator) Stop(context.Context) error {
	m.stops.Add(1)
	return nil
}

// DefaultResponse is the comment returned when no Responder is set.
func DefaultResponse(request outbound.GenerationRequest) string {
	name := request.Context.Name
	if request.Context.EnclosingName != "" {
		name = request.Context.EnclosingName + "." + name
	}
	return fmt.Sprintf("/**\n * Documents %s %s.\n */", request.Context.Kind, name)
}

// Requests returns a copy of the recorded requests in arrival order.
func (m *MockCommentGenerator) Requests() []outbound.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]outbound.GenerationRequest(nil), m.requests...)
}

// MaxInFlight returns the highest number of concurrent calls observed.
func (m *MockCommentGenerator) MaxInFlight() int {
	return int(m.maxInFlight.Load())
}

// StopCount returns how many times Stop was called.
func (m *MockCommentGenerator) StopCount() int {
	return int(m.stops.Load())
}

// Reset clears recorded requests and counters.
func (m *MockCommentGenerator) Reset() {
	m.mu.Lock()
	m.requests = nil
	m.mu.Unlock()
	m.maxInFlight.Store(0)
	m.stops.Store(0)
}
