package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"javadocgen/internal/adapter/outbound/mock"
	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/domain/valueobject"
	"javadocgen/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testJobs(n int) []GenerationJob {
	jobs := make([]GenerationJob, n)
	for i := range jobs {
		name := fmt.Sprintf("m%d", i)
		jobs[i] = GenerationJob{
			Candidate: valueobject.Candidate{
				ID:   i,
				Kind: valueobject.KindMethod,
				Name: name,
				Span: valueobject.Span{Start: uint32(100 * (i + 1)), End: uint32(100*(i+1) + 10)},
			},
			Context: valueobject.DeclarationContext{Kind: valueobject.KindMethod, Name: name},
			Prompt:  "document " + name,
		}
	}
	return jobs
}

func TestGenerationOrchestrator_ResultsFollowJobOrder(t *testing.T) {
	gen := &mock.MockCommentGenerator{Responder: func(_ context.Context, r outbound.GenerationRequest) (string, error) {
		// Later jobs answer first.
		time.Sleep(time.Duration(5-r.CandidateID) * 5 * time.Millisecond)
		return "Runs " + r.Context.Name + ".", nil
	}}
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{Concurrency: 5})

	jobs := testJobs(5)
	results := orchestrator.Run(context.Background(), jobs)

	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i, r.CandidateID)
		assert.Equal(t, jobs[i].Candidate.InsertOffset(), r.CandidateOffset)
		assert.True(t, r.Succeeded())
		assert.Equal(t, fmt.Sprintf("/**\n * Runs m%d.\n */", i), r.Text)
	}
}

func TestGenerationOrchestrator_BoundsConcurrency(t *testing.T) {
	gen := &mock.MockCommentGenerator{Delay: 20 * time.Millisecond}
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{Concurrency: 3})

	results := orchestrator.Run(context.Background(), testJobs(10))

	require.Len(t, results, 10)
	assert.Len(t, gen.Requests(), 10)
	assert.LessOrEqual(t, gen.MaxInFlight(), 3)
	assert.GreaterOrEqual(t, gen.MaxInFlight(), 1)
}

func TestGenerationOrchestrator_FailureSkipsOnlyThatCandidate(t *testing.T) {
	gen := &mock.MockCommentGenerator{Responder: func(_ context.Context, r outbound.GenerationRequest) (string, error) {
		switch r.CandidateID {
		case 1:
			return "", &outbound.GenerationError{Code: outbound.CodeServerError, Type: outbound.ErrorTypeServer, Message: "boom"}
		case 2:
			return "<think>nothing to say</think>", nil
		default:
			return "/** Fine. */", nil
		}
	}}
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{Concurrency: 2})

	results := orchestrator.Run(context.Background(), testJobs(4))

	assert.True(t, results[0].Succeeded())
	assert.True(t, results[3].Succeeded())

	assert.False(t, results[1].Succeeded())
	assert.Equal(t, valueobject.SkipGenerationFailed, results[1].Reason)
	assert.ErrorIs(t, results[1].Err, domain.ErrGeneration)

	assert.False(t, results[2].Succeeded())
	assert.Equal(t, valueobject.SkipGenerationFailed, results[2].Reason)
	assert.ErrorIs(t, results[2].Err, domain.ErrGeneration)
	assert.ErrorIs(t, results[2].Err, domain.ErrEmptyResponse)
	assert.Empty(t, results[2].Text)
}

func TestGenerationOrchestrator_RequestTimeout(t *testing.T) {
	gen := &mock.MockCommentGenerator{Delay: time.Second}
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{RequestTimeout: 20 * time.Millisecond})

	start := time.Now()
	results := orchestrator.Run(context.Background(), testJobs(2))

	assert.Less(t, time.Since(start), 900*time.Millisecond)
	for _, r := range results {
		assert.Equal(t, valueobject.SkipTimeout, r.Reason)
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
}

func TestGenerationOrchestrator_CancelledBeforeStart(t *testing.T) {
	gen := mock.NewMockCommentGenerator()
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := orchestrator.Run(ctx, testJobs(3))

	assert.Empty(t, gen.Requests())
	for _, r := range results {
		assert.Equal(t, valueobject.SkipCancelled, r.Reason)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestGenerationOrchestrator_CancelStopsDispatchButKeepsInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := &mock.MockCommentGenerator{Responder: func(reqCtx context.Context, r outbound.GenerationRequest) (string, error) {
		cancel()
		// The in-flight request is not interrupted by the run's cancellation.
		if err := reqCtx.Err(); err != nil {
			return "", err
		}
		return "/** Done " + r.Context.Name + ". */", nil
	}}
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{Concurrency: 1})

	results := orchestrator.Run(ctx, testJobs(3))

	require.Len(t, gen.Requests(), 1)
	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "/** Done m0. */", results[0].Text)
	assert.Equal(t, valueobject.SkipCancelled, results[1].Reason)
	assert.Equal(t, valueobject.SkipCancelled, results[2].Reason)
}

func TestGenerationOrchestrator_NoJobs(t *testing.T) {
	orchestrator := NewGenerationOrchestrator(mock.NewMockCommentGenerator(), OrchestratorConfig{})
	assert.Empty(t, orchestrator.Run(context.Background(), nil))
}

func TestGenerationOrchestrator_Defaults(t *testing.T) {
	orchestrator := NewGenerationOrchestrator(mock.NewMockCommentGenerator(), OrchestratorConfig{Concurrency: -1})
	assert.Equal(t, DefaultConcurrency, orchestrator.config.Concurrency)
	assert.Equal(t, DefaultRequestTimeout, orchestrator.config.RequestTimeout)
}

func TestClassifyGenerationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want valueobject.SkipReason
	}{
		{"deadline", context.DeadlineExceeded, valueobject.SkipTimeout},
		{"wrapped deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), valueobject.SkipTimeout},
		{"canceled", context.Canceled, valueobject.SkipCancelled},
		{"timeout code", &outbound.GenerationError{Code: outbound.CodeTimeout}, valueobject.SkipTimeout},
		{"cancelled code", &outbound.GenerationError{Code: outbound.CodeBackendCancelled}, valueobject.SkipCancelled},
		{"server error", &outbound.GenerationError{Code: outbound.CodeServerError}, valueobject.SkipGenerationFailed},
		{"plain", errors.New("boom"), valueobject.SkipGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyGenerationError(tt.err))
		})
	}
}

func TestGenerationOrchestrator_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewGenerationMetricsWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	gen := &mock.MockCommentGenerator{Responder: func(_ context.Context, r outbound.GenerationRequest) (string, error) {
		if r.CandidateID == 0 {
			return "", errors.New("boom")
		}
		return "/** Ok. */", nil
	}}
	orchestrator := NewGenerationOrchestrator(gen, OrchestratorConfig{Metrics: metrics})
	orchestrator.Run(context.Background(), testJobs(3))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	outcomes := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != metricGenerationRequests {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value(attrOutcome)
				outcomes[outcome.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(2), outcomes[outcomeSuccess])
	assert.Equal(t, int64(1), outcomes[string(valueobject.SkipGenerationFailed)])
}
