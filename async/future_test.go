package async

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFutureOnCompleteRunsAfterResolve(t *testing.T) {
	newTestKernel(t)
	ex := NewExecutor(DefaultConfig())
	f, p := NewFuture[int](ex)

	var got int
	seen := false
	f.OnComplete(func(v int) { got = v; seen = true })
	require.False(t, seen)

	p.Resolve(42)
	require.False(t, seen, "Resolve must post the continuation, not call it inline")
	ex.Poll()
	require.True(t, seen)
	require.Equal(t, 42, got)
}

func TestFutureOnCompleteAfterResolveStillRuns(t *testing.T) {
	newTestKernel(t)
	ex := NewExecutor(DefaultConfig())
	f, p := NewFuture[string](ex)
	p.Resolve("done")
	ex.Poll() // nothing pending yet; Resolve had no registered continuations

	var got string
	f.OnComplete(func(v string) { got = v })
	ex.Poll()
	require.Equal(t, "done", got)
}

func TestFutureResolveIsOneShot(t *testing.T) {
	newTestKernel(t)
	ex := NewExecutor(DefaultConfig())
	f, p := NewFuture[int](ex)

	var calls int
	f.OnComplete(func(int) { calls++ })
	p.Resolve(1)
	p.Resolve(2)
	ex.Poll()
	ex.Poll()
	require.Equal(t, 1, calls)
}

func TestThenChainsTransformation(t *testing.T) {
	newTestKernel(t)
	ex := NewExecutor(DefaultConfig())
	f, p := NewFuture[int](ex)
	doubled := Then(f, func(v int) int { return v * 2 })

	var got int
	doubled.OnComplete(func(v int) { got = v })
	p.Resolve(21)
	ex.Poll()
	ex.Poll()
	require.Equal(t, 42, got)
}

func TestAwaitBridgesCallbackAPI(t *testing.T) {
	newTestKernel(t)
	ex := NewExecutor(DefaultConfig())

	var stashed func(int)
	f := Await(ex, func(resolve func(int)) { stashed = resolve })

	var got int
	f.OnComplete(func(v int) { got = v })
	stashed(7)
	ex.Poll()
	require.Equal(t, 7, got)
}

func TestDelayFutureResolvesAfterTicksElapse(t *testing.T) {
	k := newTestKernel(t)
	ex := NewExecutor(DefaultConfig())

	f := Delay(ex, 2)
	resolved := false
	f.OnComplete(func(struct{}) { resolved = true })

	k.Tick()
	ex.Poll()
	require.False(t, resolved)

	k.Tick()
	ex.Poll()
	ex.Poll()
	require.True(t, resolved)
}
