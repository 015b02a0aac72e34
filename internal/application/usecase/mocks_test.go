package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/fraudshield/fraud-analyzer/pkg/events"
)

type mockPublisher struct {
	err    error
	events []events.DomainEvent
	mu     sync.Mutex
}

func (m *mockPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evts...)
	return m.err
}

func (m *mockPublisher) published() []events.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.DomainEvent(nil), m.events...)
}

var errBrokerDown = errors.New("broker down")

// shapeChecked mimics a fitted probabilistic model with a fixed input width.
type shapeChecked struct {
	n     int
	fraud float64
}

func (s shapeChecked) Kind() string     { return "fixture" }
func (s shapeChecked) NumFeatures() int { return s.n }
func (s shapeChecked) PredictProba(x []float64) ([]float64, error) {
	if len(x) != s.n {
		return nil, errors.New("X has wrong number of features")
	}
	return []float64{1 - s.fraud, s.fraud}, nil
}
