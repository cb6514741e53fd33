package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mos/arch"
	"mos/kernel"
)

func newTestKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	cfg := kernel.DefaultConfig()
	cfg.MaxTaskNum = 8
	cfg.PoolSize = 8
	k := kernel.New(cfg, arch.NewSim(), nil)
	t.Cleanup(k.Halt)
	return k
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}
}

func TestSemaDownProceedsWithoutBlockingWhenPositive(t *testing.T) {
	k := newTestKernel(t)
	sem := NewSema(1)

	done := make(chan struct{})
	_, err := k.CreateTask(func(any) {
		sem.Down()
		require.Zero(t, sem.Count())
		close(done)
	}, nil, kernel.PriMin, "taker")
	require.NoError(t, err)

	go k.Start()
	waitFor(t, done)
}

func TestSemaUpWakesOldestWaiterFirst(t *testing.T) {
	k := newTestKernel(t)
	sem := NewSema(0)

	order := make(chan string, 2)
	mk := func(name string) kernel.EntryFunc {
		return func(any) {
			sem.Down()
			order <- name
		}
	}
	_, err := k.CreateTask(mk("first"), nil, kernel.PriMin, "first")
	require.NoError(t, err)
	_, err = k.CreateTask(mk("second"), nil, kernel.PriMin, "second")
	require.NoError(t, err)

	releaser := make(chan struct{})
	_, err = k.CreateTask(func(any) {
		<-releaser
		sem.Up()
		sem.Up()
	}, nil, kernel.PriMax, "releaser")
	require.NoError(t, err)

	go k.Start()
	close(releaser)

	require.Equal(t, "first", <-order)
	require.Equal(t, "second", <-order)
}

func TestSemaUpWakesHigherPriorityTaskImmediately(t *testing.T) {
	k := newTestKernel(t)
	sem := NewSema(0)

	var observed []string
	mark := func(name string) { observed = append(observed, name) }

	_, err := k.CreateTask(func(any) {
		sem.Down()
		mark("high")
	}, nil, kernel.PriMax, "high")
	require.NoError(t, err)

	done := make(chan struct{})
	_, err = k.CreateTask(func(any) {
		mark("low-before")
		sem.Up()
		mark("low-after")
		close(done)
	}, nil, kernel.PriMin, "low")
	require.NoError(t, err)

	go k.Start()
	waitFor(t, done)
	require.Equal(t, []string{"low-before", "high", "low-after"}, observed,
		"Up() on a higher-priority waiter should switch to it before the releaser continues")
}
