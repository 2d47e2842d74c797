package scene

import (
	"context"
	"fmt"
	"sync"

	"autodrive-service/internal/domain"
	"autodrive-service/internal/ports"
)

// MockOutcome scripts what the mock returns for the point at a given index
// in its call order, keyed by quantized coordinate.
type MockOutcome int

const (
	MockSucceed MockOutcome = iota
	MockUnavailable
	MockError
)

// MockSceneProvider returns scripted outcomes per coordinate and records
// every fetch for assertions. Coordinates without a script succeed.
type MockSceneProvider struct {
	mu       sync.Mutex
	outcomes map[string]MockOutcome
	calls    []domain.Coordinates
	block    chan struct{}
}

func NewMockSceneProvider() *MockSceneProvider {
	return &MockSceneProvider{outcomes: make(map[string]MockOutcome)}
}

func mockKey(c domain.Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Script sets the outcome returned for fetches of a coordinate.
func (m *MockSceneProvider) Script(c domain.Coordinates, outcome MockOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[mockKey(c)] = outcome
}

// Block makes subsequent fetches wait until Unblock is called, simulating a
// slow provider with requests in flight.
func (m *MockSceneProvider) Block() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = make(chan struct{})
}

func (m *MockSceneProvider) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.block != nil {
		close(m.block)
		m.block = nil
	}
}

// Calls returns a copy of the coordinates fetched so far.
func (m *MockSceneProvider) Calls() []domain.Coordinates {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Coordinates, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockSceneProvider) FetchScene(ctx context.Context, position domain.Coordinates) (domain.SceneHandle, error) {
	m.mu.Lock()
	m.calls = append(m.calls, position)
	outcome := m.outcomes[mockKey(position)]
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.SceneHandle{}, ctx.Err()
		}
	}

	switch outcome {
	case MockUnavailable:
		return domain.SceneHandle{}, ports.ErrSceneUnavailable
	case MockError:
		return domain.SceneHandle{}, fmt.Errorf("mock scene provider: transient failure at %s", mockKey(position))
	default:
		return domain.SceneHandle{
			PanoID:   "pano-" + mockKey(position),
			ImageURL: "https://scenes.invalid/" + mockKey(position),
			Location: position,
		}, nil
	}
}
