package edureport

// Notes:
// - Loaders are fakes; a blocking loader keeps the capability in the
//   loading state so concurrent callers can pile up on the same attempt.

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_EnsureLoadsOnce(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{release: make(chan struct{})}
	r := NewRegistry()
	r.Register(RegionCapture, loader)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Ensure(context.Background(), RegionCapture)
		}()
	}

	// Let the callers queue behind the in-flight load.
	deadline := time.Now().Add(2 * time.Second)
	for r.State(RegionCapture) != StateLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(loader.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Ensure() error = %v", err)
		}
	}
	if got := loader.count(); got != 1 {
		t.Errorf("Load called %d times, want 1", got)
	}
	if got := r.LoadAttempts(RegionCapture); got != 1 {
		t.Errorf("LoadAttempts() = %d, want 1", got)
	}
	if got := r.State(RegionCapture); got != StateReady {
		t.Errorf("State() = %v, want ready", got)
	}
}

func TestRegistry_FailureIsSharedAndSticky(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("script blocked")
	loader := &countingLoader{err: loadErr, release: make(chan struct{})}
	r := NewRegistry()
	r.Register(DocumentDrawing, loader)

	errs := make(chan error, 2)
	for range 2 {
		go func() { errs <- r.Ensure(context.Background(), DocumentDrawing) }()
	}
	for r.LoadAttempts(DocumentDrawing) == 0 {
		time.Sleep(time.Millisecond)
	}
	close(loader.release)

	first, second := <-errs, <-errs
	for _, err := range []error{first, second} {
		if !errors.Is(err, ErrCapabilityUnavailable) {
			t.Errorf("Ensure() error = %v, want ErrCapabilityUnavailable", err)
		}
		if !errors.Is(err, loadErr) {
			t.Errorf("Ensure() error = %v, want wrapped load error", err)
		}
		var capErr *CapabilityError
		if !errors.As(err, &capErr) || capErr.ID != DocumentDrawing {
			t.Errorf("Ensure() error = %v, want CapabilityError for document-drawing", err)
		}
	}

	// Failed is terminal: no new attempt.
	if err := r.Ensure(context.Background(), DocumentDrawing); !errors.Is(err, loadErr) {
		t.Errorf("later Ensure() error = %v, want same failure", err)
	}
	if got := loader.count(); got != 1 {
		t.Errorf("Load called %d times, want 1", got)
	}
	if got := r.State(DocumentDrawing); got != StateFailed {
		t.Errorf("State() = %v, want failed", got)
	}
}

func TestRegistry_AvailableSkipsLoad(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(DocumentDrawing, readyLoader{})

	if err := r.Ensure(context.Background(), DocumentDrawing); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if got := r.LoadAttempts(DocumentDrawing); got != 0 {
		t.Errorf("LoadAttempts() = %d, want 0 for pre-loaded capability", got)
	}
	if got := r.State(DocumentDrawing); got != StateReady {
		t.Errorf("State() = %v, want ready", got)
	}
}

func TestRegistry_UnknownCapability(t *testing.T) {
	t.Parallel()

	err := NewRegistry().Ensure(context.Background(), RegionCapture)
	if !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("Ensure() error = %v, want ErrUnknownCapability", err)
	}
}

func TestRegistry_CallerCancelDoesNotFailLoad(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{release: make(chan struct{})}
	r := NewRegistry()
	r.Register(RegionCapture, loader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Ensure(ctx, RegionCapture) }()

	for r.LoadAttempts(RegionCapture) == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Ensure() error = %v, want context.Canceled", err)
	}

	close(loader.release)
	if err := r.Ensure(context.Background(), RegionCapture); err != nil {
		t.Errorf("Ensure() after release error = %v, want nil", err)
	}
	if got := loader.count(); got != 1 {
		t.Errorf("Load called %d times, want 1", got)
	}
}

func TestRegistry_RegisterAfterLoadIgnored(t *testing.T) {
	t.Parallel()

	first := &countingLoader{}
	r := NewRegistry()
	r.Register(RegionCapture, first)
	if err := r.Ensure(context.Background(), RegionCapture); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	second := &countingLoader{err: errBoom}
	r.Register(RegionCapture, second)
	if err := r.Ensure(context.Background(), RegionCapture); err != nil {
		t.Errorf("Ensure() error = %v, want loaded capability kept", err)
	}
	if second.count() != 0 {
		t.Error("replacement loader was invoked")
	}
}

func TestCapabilityStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got, want string
	}{
		{DocumentDrawing.String(), "document-drawing"},
		{RegionCapture.String(), "region-capture"},
		{Capability(9).String(), "capability(9)"},
		{StateLoading.String(), "loading"},
		{StateFailed.String(), "failed"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
