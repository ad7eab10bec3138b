package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards the output buffer against the rebuild goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcher_RecompilesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	var calls int32
	w := &Watcher{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		Out:      &syncBuffer{},
		Recompile: func(p string) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Initial rebuild fires as the loop starts.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_ReportsDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	out := &syncBuffer{}
	w := &Watcher{
		Path: path,
		Out:  out,
		Recompile: func(string) error {
			return errors.New("output directory: not specified")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Not ready"))
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "output directory: not specified")
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	var calls int32
	w := &Watcher{
		Path:     path,
		Debounce: 20 * time.Millisecond,
		Out:      &syncBuffer{},
		Recompile: func(string) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_CoalescesOverlappingRebuilds(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	w := &Watcher{
		Path: "session.yaml",
		Out:  &syncBuffer{},
		Recompile: func(string) error {
			atomic.AddInt32(&calls, 1)
			<-release
			return nil
		},
	}

	// First trigger starts a recompile that blocks; the burst behind it
	// must join that run, not start their own.
	w.rebuild()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	w.rebuild()
	w.rebuild()
	time.Sleep(50 * time.Millisecond)
	close(release)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
