package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLock(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire is rejected", func(t *testing.T) {
		l := NewLocalLock(time.Minute)

		if err := l.Acquire(ctx, "thread-1"); err != nil {
			t.Fatalf("first Acquire: %v", err)
		}
		if err := l.Acquire(ctx, "thread-1"); !errors.Is(err, ErrLocked) {
			t.Errorf("second Acquire = %v, want ErrLocked", err)
		}
	})

	t.Run("threads are independent", func(t *testing.T) {
		l := NewLocalLock(time.Minute)

		if err := l.Acquire(ctx, "thread-1"); err != nil {
			t.Fatalf("Acquire thread-1: %v", err)
		}
		if err := l.Acquire(ctx, "thread-2"); err != nil {
			t.Errorf("Acquire thread-2 = %v, want nil", err)
		}
	})

	t.Run("release frees the thread", func(t *testing.T) {
		l := NewLocalLock(time.Minute)

		if err := l.Acquire(ctx, "thread-1"); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		l.Release(ctx, "thread-1")
		if err := l.Acquire(ctx, "thread-1"); err != nil {
			t.Errorf("Acquire after Release = %v, want nil", err)
		}
	})

	t.Run("stale lock expires", func(t *testing.T) {
		l := NewLocalLock(10 * time.Millisecond)

		if err := l.Acquire(ctx, "thread-1"); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
		if err := l.Acquire(ctx, "thread-1"); err != nil {
			t.Errorf("Acquire after TTL = %v, want nil", err)
		}
	})

	t.Run("release of unheld thread is harmless", func(t *testing.T) {
		l := NewLocalLock(time.Minute)
		l.Release(ctx, "never-held")
	})
}
