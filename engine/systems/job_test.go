package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/fusion/engine/core"
)

func TestNewJobSystemInvalidArguments(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("expected ErrNoWorkers, got %v", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Errorf("expected ErrNegativeChannelSize, got %v", err)
	}
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var completed, failed, finished atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		err := js.Submit(JobTask{
			Name: "count",
			Run: func() error {
				if i%10 == 0 {
					return errors.New("boom")
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure:  func(error) { failed.Add(1) },
			OnCompletionCallback: func() {
				finished.Add(1)
				wg.Done()
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	wg.Wait()

	if completed.Load() != 90 || failed.Load() != 10 || finished.Load() != 100 {
		t.Errorf("completed=%d failed=%d finished=%d", completed.Load(), failed.Load(), finished.Load())
	}
	if err := js.Shutdown(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJobSystemShutdownDrainsQueue(t *testing.T) {
	js, _ := NewJobSystem(1, 16)
	var ran atomic.Int32
	for i := 0; i < 16; i++ {
		_ = js.Submit(JobTask{Name: "drain", Run: func() error {
			ran.Add(1)
			return nil
		}})
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran.Load() != 16 {
		t.Errorf("expected 16 jobs to run, got %d", ran.Load())
	}
}

func TestJobSystemSubmitAfterShutdown(t *testing.T) {
	js, _ := NewJobSystem(1, 0)
	_ = js.Shutdown()

	err := js.Submit(JobTask{Name: "late", Run: func() error { return nil }})
	if !errors.Is(err, core.ErrUseAfterTeardown) {
		t.Errorf("expected ErrUseAfterTeardown, got %v", err)
	}
	if err := js.Shutdown(); !errors.Is(err, core.ErrUseAfterTeardown) {
		t.Errorf("expected ErrUseAfterTeardown on second shutdown, got %v", err)
	}
	if err := js.Submit(JobTask{Name: "empty"}); err == nil {
		t.Error("a job without Run should be rejected")
	}
}
