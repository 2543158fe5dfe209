// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	var done atomic.Int32
	for i := 0; i < 100; i++ {
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
			done.Add(1)
		})
	}

	cg.Close()
	if n := done.Load(); n != 100 {
		t.Fatalf("want all 100 goroutines finished, got %d", n)
	}
	if cause := context.Cause(cg.Context()); !errors.Is(cause, os.ErrClosed) {
		t.Fatalf("want os.ErrClosed cause, got %v", cause)
	}
}
