package concurrent

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunKeepsOrderAndDrops(t *testing.T) {
	r := NewRunner[int, int](RunnerConfig{MaxConcurrency: 3}, nil)
	items := []int{1, 2, 3, 4, 5, 6}
	res := r.Run(context.Background(), items, func(_ context.Context, n int) (int, bool, error) {
		time.Sleep(time.Duration(7-n) * time.Millisecond)
		if n == 4 {
			return 0, false, errors.New("four")
		}
		return n * 10, n%2 == 0 || n == 5, nil
	})
	if want := []int{20, 50, 60}; !reflect.DeepEqual(res.Results, want) {
		t.Fatalf("results = %v, want %v", res.Results, want)
	}
	if len(res.Errors) != 1 || res.Errors[0].Error() != "four" {
		t.Fatalf("errors = %v", res.Errors)
	}
}

func TestRunEmpty(t *testing.T) {
	r := NewRunner[int, int](RunnerConfig{}, nil)
	res := r.Run(context.Background(), nil, nil)
	if res.Results == nil || len(res.Results) != 0 || len(res.Errors) != 0 {
		t.Fatalf("unexpected %+v", res)
	}
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	const limit = 2
	var active, peak int32
	r := NewRunner[int, int](RunnerConfig{MaxConcurrency: limit}, nil)
	items := make([]int, 10)
	r.Run(context.Background(), items, func(context.Context, int) (int, bool, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return 0, true, nil
	})
	if peak > limit {
		t.Fatalf("peak concurrency %d > %d", peak, limit)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	r := NewRunner[int, int](RunnerConfig{MaxConcurrency: 1}, nil)
	res := r.Run(ctx, []int{1, 2, 3}, func(context.Context, int) (int, bool, error) {
		atomic.AddInt32(&calls, 1)
		return 1, true, nil
	})
	if calls != 0 || len(res.Results) != 0 || len(res.Errors) != 3 {
		t.Fatalf("calls = %d, result %+v", calls, res)
	}
	for _, err := range res.Errors {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	}
}

func TestRunChunked(t *testing.T) {
	var maxSeen int32
	var active int32
	r := NewRunner[int, int](RunnerConfig{}, nil)
	items := []int{1, 2, 3, 4, 5, 6, 7}
	res := r.RunChunked(context.Background(), items, 3, func(_ context.Context, n int) (int, bool, error) {
		a := atomic.AddInt32(&active, 1)
		if a > atomic.LoadInt32(&maxSeen) {
			atomic.StoreInt32(&maxSeen, a)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return n, true, nil
	})
	if !reflect.DeepEqual(res.Results, items) {
		t.Fatalf("results = %v", res.Results)
	}
	if maxSeen > 3 {
		t.Fatalf("chunk overlap: %d active", maxSeen)
	}
}
