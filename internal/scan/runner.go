package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/momentum-scanner/internal/contracts"
)

// ErrScanInProgress is returned when a scan is requested while one runs
var ErrScanInProgress = errors.New("scan already in progress")

// UniverseFunc resolves the symbols to scan at run time
type UniverseFunc func(ctx context.Context) (*contracts.Universe, error)

// Runner runs one scan at a time and publishes it to the store. The
// scheduler and the API share a Runner.
type Runner struct {
	coordinator *Coordinator
	store       *Store
	universe    UniverseFunc
	running     sync.Mutex
}

// NewRunner creates a new Runner
func NewRunner(coordinator *Coordinator, store *Store, universe UniverseFunc) *Runner {
	return &Runner{
		coordinator: coordinator,
		store:       store,
		universe:    universe,
	}
}

// Run resolves the universe, scans it and stores the result
func (r *Runner) Run(ctx context.Context) (*contracts.ScanResult, error) {
	if !r.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer r.running.Unlock()

	return r.run(ctx)
}

// Start runs a scan in the background and reports its outcome on the
// returned channel. Like Run, it fails fast with ErrScanInProgress.
func (r *Runner) Start(ctx context.Context) (<-chan error, error) {
	if !r.running.TryLock() {
		return nil, ErrScanInProgress
	}

	done := make(chan error, 1)
	go func() {
		defer r.running.Unlock()
		_, err := r.run(ctx)
		done <- err
	}()
	return done, nil
}

func (r *Runner) run(ctx context.Context) (*contracts.ScanResult, error) {
	universe, err := r.universe(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}

	result := r.coordinator.Scan(ctx, universe)
	r.store.Put(result)
	return result, nil
}

// Store returns the store results are published to
func (r *Runner) Store() *Store {
	return r.store
}
