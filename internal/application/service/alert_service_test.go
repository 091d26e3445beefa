package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertService(t *testing.T) {
	ctx := context.Background()
	shipments := new(mocks.MockShipmentRepository)
	history := new(mocks.MockAlertHistoryRepository)
	advisor := NewDayAdvisor(tableResolver{}, false, quietLogger())
	svc := NewAlertService(shipments, history, NewAlertGenerator(advisor, quietLogger()), quietLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 3, 15, 30, 0, 0, time.UTC) }

	t.Run("Alerts for today", func(t *testing.T) {
		shipments.On("FindAll", ctx).Return([]*entity.Shipment{shipment("A1", "Acme", day(2024, 3, 10))}, nil).Once()

		alerts, err := svc.Alerts(ctx, WindowToday, Overrides{})
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, entity.AlertCertificationDue, alerts[0].Kind)
	})

	t.Run("Store failure", func(t *testing.T) {
		shipments.On("FindAll", ctx).Return(nil, errors.New("closed")).Once()

		_, err := svc.Alerts(ctx, WindowWeek, Overrides{})
		assert.Error(t, err)
	})

	t.Run("History and resolve", func(t *testing.T) {
		history.On("All", ctx).Return([]entity.AlertRecord{{Position: 0, ShipmentID: "A1"}}, nil).Once()
		history.On("MarkResolved", ctx, 0).Return(nil).Once()
		history.On("MarkResolved", ctx, 7).Return(entity.ErrAlertRecordNotFound).Once()

		records, err := svc.History(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)

		assert.NoError(t, svc.Resolve(ctx, 0))

		err = svc.Resolve(ctx, 7)
		assert.True(t, errors.Is(err, entity.ErrAlertRecordNotFound))

		err = svc.Resolve(ctx, -1)
		assert.True(t, errors.Is(err, entity.ErrValidation))

		history.AssertExpectations(t)
	})
}
