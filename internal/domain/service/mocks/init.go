package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/obsdemo/internal/domain/models"
)

// MockMetrics is a mock implementation of service.Metrics.
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordError(endpoint string) {
	m.Called(endpoint)
}

// MockDemoAppService is a mock implementation of the application DemoAppService.
type MockDemoAppService struct {
	mock.Mock
}

func (m *MockDemoAppService) Directory(ctx context.Context) *models.RouteDirectory {
	return m.Called(ctx).Get(0).(*models.RouteDirectory)
}

func (m *MockDemoAppService) Health(ctx context.Context) *models.HealthStatus {
	return m.Called(ctx).Get(0).(*models.HealthStatus)
}

func (m *MockDemoAppService) SampleData(ctx context.Context) *models.SampleData {
	return m.Called(ctx).Get(0).(*models.SampleData)
}

func (m *MockDemoAppService) RandomNumber(ctx context.Context) *models.RandomNumber {
	return m.Called(ctx).Get(0).(*models.RandomNumber)
}

func (m *MockDemoAppService) SimulateError(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ScriptedRandom replays a fixed sequence of draws, cycling when exhausted.
// Each value is reduced modulo n.
type ScriptedRandom struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewScriptedRandom(values ...int) *ScriptedRandom {
	return &ScriptedRandom{values: values}
}

func (r *ScriptedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

// FakeClock returns a fixed time and records requested sleeps without blocking.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// Sleeps returns every duration passed to Sleep.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
