package core

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ImportRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := NewService(newTestGateway(t), ServiceConfig{MaxConcurrent: 2, MaxWait: time.Second}, metrics)

	body := importHeader +
		"iPhone,,Electronics,,999.99,Ann,5,\n" +
		"iPhone,,Electronics,,999.99,Bob,6,\n"

	result, err := svc.Import(context.Background(), csvSource(body))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ReviewsAdded)

	_, err = svc.Import(context.Background(), csvSource(importHeader))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Imports.WithLabelValues(OutcomePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Imports.WithLabelValues(OutcomeEmptyBatch)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Rows.WithLabelValues("total")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rows.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Rows.WithLabelValues("review")))
	assert.Equal(t, 0, svc.LimiterStatus().Active)
}

func TestService_BusyReleasesSource(t *testing.T) {
	svc := NewService(&fakeGateway{}, ServiceConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond}, nil)
	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	sf := stage(t, "ok.csv", importHeader+"iPhone,,Electronics,,1,Ann,5,\n")

	result, err := svc.Import(context.Background(), sf)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTooManyImports)

	_, statErr := os.Stat(sf.Path())
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestService_WaitForImports(t *testing.T) {
	svc := NewService(&fakeGateway{}, ServiceConfig{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, svc.WaitForImports(ctx))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result *ImportResult
		err    error
		want   string
	}{
		{"success", &ImportResult{ReviewsAdded: 2}, nil, OutcomeSuccess},
		{"partial", &ImportResult{ReviewsAdded: 1, RowErrors: []RowError{{Row: 2}}}, nil, OutcomePartial},
		{"rejected", &ImportResult{RowErrors: []RowError{{Row: 1}}}, nil, OutcomeRejected},
		{"unsupported", nil, ErrUnsupportedFormat, OutcomeUnsupportedFormat},
		{"malformed", nil, ErrMalformedInput, OutcomeMalformedInput},
		{"empty", nil, ErrEmptyBatch, OutcomeEmptyBatch},
		{"commit", nil, &CommitError{Op: "commit", Err: errors.New("x")}, OutcomeCommitFailed},
		{"busy", nil, ErrTooManyImports, OutcomeBusy},
		{"other", nil, errors.New("x"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.result, tt.err))
		})
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe(&ImportResult{}, nil, time.Second)
}
