// --- START OF FINAL REVISED FILE internal/testutil/mocks.go ---
// Package testutil provides fixtures and mock implementations for interfaces defined
// in the exif-count core library (pkg/photostat) and the CLI layer. These mocks
// facilitate unit testing by isolating components.
package testutil

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"

	"github.com/aben20807/exif-count/pkg/photostat"
)

// MockExtractor provides a mock implementation of the photostat.Extractor interface.
// Configure expectations using testify/mock methods (e.g., .On("Extract", ...).Return(...)).
// testify/mock records calls under its own lock, so the mock is safe for the engine's
// concurrent workers.
type MockExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method.
func (m *MockExtractor) Extract(ctx context.Context, path string) (record *photostat.FileRecord, err error) {
	args := m.Called(ctx, path)
	record, _ = args.Get(0).(*photostat.FileRecord)
	err = args.Error(1)
	return
}

// FuncExtractor adapts a function to the photostat.Extractor interface. It suits tests
// that need to block or delay inside Extract.
type FuncExtractor func(ctx context.Context, path string) (*photostat.FileRecord, error)

// Extract implements photostat.Extractor.
func (f FuncExtractor) Extract(ctx context.Context, path string) (*photostat.FileRecord, error) {
	return f(ctx, path)
}

// MockHooks provides a mock implementation of the photostat.Hooks interface.
// Configure expectations using testify/mock methods (e.g., .On("OnFileStatusUpdate", ...).Return(...)).
// See photostat.Hooks for the interface contract.
type MockHooks struct {
	mock.Mock
}

// OnRunStart mocks the OnRunStart method.
func (m *MockHooks) OnRunStart(total int) error {
	args := m.Called(total)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status photostat.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report photostat.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

// StatusUpdate is one OnFileStatusUpdate call captured by RecordingHooks.
type StatusUpdate struct {
	Path    string
	Status  photostat.Status
	Message string
}

// RecordingHooks records every hook invocation. Safe for concurrent use.
type RecordingHooks struct {
	mu      sync.Mutex
	Total   int
	Updates []StatusUpdate
	Reports []photostat.Report
	Started int
}

// OnRunStart implements photostat.Hooks.
func (h *RecordingHooks) OnRunStart(total int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Started++
	h.Total = total
	return nil
}

// OnFileStatusUpdate implements photostat.Hooks.
func (h *RecordingHooks) OnFileStatusUpdate(path string, status photostat.Status, message string, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Updates = append(h.Updates, StatusUpdate{Path: path, Status: status, Message: message})
	return nil
}

// OnRunComplete implements photostat.Hooks.
func (h *RecordingHooks) OnRunComplete(report photostat.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Reports = append(h.Reports, report)
	return nil
}

// StatusCounts returns how many updates were recorded per status.
func (h *RecordingHooks) StatusCounts() map[photostat.Status]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make(map[photostat.Status]int)
	for _, u := range h.Updates {
		counts[u.Status]++
	}
	return counts
}

// MockProgressBar provides a mock implementation of the hooks.ProgressBar interface.
type MockProgressBar struct {
	mock.Mock
}

// Add mocks the Add method.
func (m *MockProgressBar) Add(num int) error {
	args := m.Called(num)
	return args.Error(0)
}

// Describe mocks the Describe method.
func (m *MockProgressBar) Describe(description string) {
	m.Called(description)
}

// Finish mocks the Finish method.
func (m *MockProgressBar) Finish() error {
	args := m.Called()
	return args.Error(0)
}

// MockTUIProgram provides a mock implementation of the hooks.TUIProgram interface.
type MockTUIProgram struct {
	mock.Mock
}

// Send mocks the Send method.
func (m *MockTUIProgram) Send(msg tea.Msg) {
	m.Called(msg)
}

// --- END OF FINAL REVISED FILE internal/testutil/mocks.go ---
