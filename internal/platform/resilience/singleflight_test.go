package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("token-key", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_SharesErrorAndClearsKey(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	boom := errors.New("token endpoint down")

	_, err, shared := g.Do("refresh", func() (any, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected shared error, got %v", err)
	}
	if shared {
		t.Fatalf("single caller should not report shared result")
	}
	if g.InFlight("refresh") {
		t.Fatalf("key should be released after call returns")
	}
}

func TestWait_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if got := LinearBackoff(10*time.Millisecond, 2); got != 30*time.Millisecond {
		t.Fatalf("unexpected backoff %s", got)
	}
}
