package utils

import (
	"sync/atomic"
	"time"
)

var sleepFunc atomic.Pointer[func(time.Duration)]

func init() {
	ResetSleepFunc()
}

// Sleep waits for d using the current sleep function. Commit retries and
// queue requeue delays go through it so tests can record the waits.
func Sleep(d time.Duration) {
	(*sleepFunc.Load())(d)
}

func SetSleepFunc(f func(time.Duration)) {
	sleepFunc.Store(&f)
}

// ResetSleepFunc restores time.Sleep.
func ResetSleepFunc() {
	SetSleepFunc(time.Sleep)
}
