package timer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/reactor/timer"
)

func TestWheel_Schedule_OneShot(t *testing.T) {
	svc := timer.NewWheelWithResolution(time.Millisecond)
	defer svc.Close()

	var fired atomic.Bool
	svc.Schedule(func() { fired.Store(true) }, 10*time.Millisecond)

	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
}

func TestWheel_Cancel_BeforeFire(t *testing.T) {
	svc := timer.NewWheelWithResolution(time.Millisecond)
	defer svc.Close()

	var fired atomic.Bool
	reg := svc.Schedule(func() { fired.Store(true) }, 200*time.Millisecond)
	reg.Cancel()

	time.Sleep(250 * time.Millisecond)
	require.False(t, fired.Load())
}

func TestWheel_SchedulePeriodic(t *testing.T) {
	svc := timer.NewWheelWithResolution(time.Millisecond)
	defer svc.Close()

	var n atomic.Int64
	reg := svc.SchedulePeriodic(func() { n.Add(1) }, 10*time.Millisecond)
	defer reg.Cancel()

	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestWheel_Close_StopsPending(t *testing.T) {
	svc := timer.NewWheelWithResolution(time.Millisecond)
	var fired atomic.Bool
	svc.Schedule(func() { fired.Store(true) }, 50*time.Millisecond)
	svc.Close()
	time.Sleep(80 * time.Millisecond)
	require.False(t, fired.Load())
}
