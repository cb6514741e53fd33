package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mos/arch"
)

func TestNewAcceptsNilLogger(t *testing.T) {
	k := New(DefaultConfig(), arch.NewSim(), nil)
	require.NotPanics(t, func() { k.PrintAll() })
}

func TestCurrentReturnsMostRecentKernel(t *testing.T) {
	k := New(DefaultConfig(), arch.NewSim(), nil)
	require.Same(t, k, Current())
}

func TestCreateTaskOOMWhenPoolExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoolSize = 1
	cfg.MaxTaskNum = 4
	k := New(cfg, arch.NewSim(), nil)

	_, err := k.CreateTask(func(any) {}, nil, PriMin, "one")
	require.NoError(t, err)

	_, err = k.CreateTask(func(any) {}, nil, PriMin, "two")
	require.Error(t, err)
	var kerr *KernelError
	require.ErrorAs(t, err, &kerr)
	require.Equal(t, OOM, kerr.Kind)
}

func TestTickIncrementsCounter(t *testing.T) {
	k := New(DefaultConfig(), arch.NewSim(), nil)
	require.EqualValues(t, 0, k.Ticks())
	k.Tick()
	k.Tick()
	require.EqualValues(t, 2, k.Ticks())
}

func TestPrintAllOrdersByTaskID(t *testing.T) {
	k := New(DefaultConfig(), arch.NewSim(), nil)
	_, err := k.CreateTask(func(any) {}, nil, PriMin, "first")
	require.NoError(t, err)
	_, err = k.CreateTask(func(any) {}, nil, PriMax, "second")
	require.NoError(t, err)

	infos := k.PrintAll()
	require.Len(t, infos, 2)
	require.Equal(t, "first", infos[0].Name)
	require.Equal(t, "second", infos[1].Name)
	require.Less(t, infos[0].ID, infos[1].ID)
}

func TestTickDueHandlesWraparound(t *testing.T) {
	require.True(t, tickDue(10, 10))
	require.True(t, tickDue(11, 10))
	require.False(t, tickDue(9, 10))
	// now has wrapped past zero while target was set just before the wrap.
	require.True(t, tickDue(1, 0xFFFFFFFE))
}
