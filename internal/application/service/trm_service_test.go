package service

import (
	"context"
	"testing"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTRMService(t *testing.T) {
	ctx := context.Background()
	rates := tableResolver{"2024-03-10": 3950.5, "2024-03-11": 3900}
	history := new(mocks.MockRateHistoryRepository)
	svc := NewTRMService(rates, NewDayAdvisor(rates, false, quietLogger()), history, quietLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }

	t.Run("Rate", func(t *testing.T) {
		rate := svc.Rate(ctx, day(2024, 3, 10))
		assert.Equal(t, 3950.5, rate.Value)
	})

	t.Run("Summary trend", func(t *testing.T) {
		summary := svc.Summary(ctx, Overrides{})
		assert.Equal(t, 3950.5, summary.Today.Value)
		assert.Equal(t, 3900.0, summary.Tomorrow.Value)
		assert.Equal(t, TrendDown, summary.Trend)

		summary = svc.Summary(ctx, Overrides{Tomorrow: 4000})
		assert.Equal(t, entity.SourceManual, summary.Tomorrow.Source)
		assert.Equal(t, TrendUp, summary.Trend)

		summary = svc.Summary(ctx, Overrides{Today: 3900})
		assert.Equal(t, TrendFlat, summary.Trend)
	})

	t.Run("Advice", func(t *testing.T) {
		advice := svc.Advice(ctx, day(2024, 3, 10), Overrides{})
		assert.True(t, advice.HasData)
		assert.Equal(t, day(2024, 3, 10), advice.BestDate)
	})

	t.Run("History", func(t *testing.T) {
		history.On("All", ctx).Return([]entity.RateSample{{Date: day(2024, 3, 10), Value: 3950.5}}, nil).Once()
		samples, err := svc.History(ctx)
		require.NoError(t, err)
		assert.Len(t, samples, 1)
	})
}
