// internal/mocks/mocks.go

// Package mocks provides testify mocks for the domain interfaces
package mocks

import (
	"context"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/service"
	"github.com/stretchr/testify/mock"
)

// MockShipmentRepository mocks the ShipmentRepository interface
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Upsert(ctx context.Context, s *entity.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id string) (*entity.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context) ([]*entity.Shipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Delete(ctx context.Context, ids []string) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

// MockRateHistoryRepository mocks the RateHistoryRepository interface
type MockRateHistoryRepository struct {
	mock.Mock
}

func (m *MockRateHistoryRepository) Append(ctx context.Context, sample entity.RateSample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}

func (m *MockRateHistoryRepository) Last(ctx context.Context) (*entity.RateSample, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RateSample), args.Error(1)
}

func (m *MockRateHistoryRepository) All(ctx context.Context) ([]entity.RateSample, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RateSample), args.Error(1)
}

// MockAlertHistoryRepository mocks the AlertHistoryRepository interface
type MockAlertHistoryRepository struct {
	mock.Mock
}

func (m *MockAlertHistoryRepository) Append(ctx context.Context, records []entity.AlertRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockAlertHistoryRepository) All(ctx context.Context) ([]entity.AlertRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AlertRecord), args.Error(1)
}

func (m *MockAlertHistoryRepository) MarkResolved(ctx context.Context, position int) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

// MockRateSource mocks the official TRM source
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRate(ctx context.Context, date time.Time) service.RateOutcome {
	args := m.Called(ctx, date)
	return args.Get(0).(service.RateOutcome)
}

// StaticRateSource answers from a fixed table keyed by YYYY-MM-DD; missing dates are NoData
type StaticRateSource map[string]float64

func (s StaticRateSource) FetchRate(ctx context.Context, date time.Time) service.RateOutcome {
	if v, ok := s[entity.Day(date).Format(entity.DateLayout)]; ok {
		return service.Ok(v)
	}
	return service.NoData(nil)
}
