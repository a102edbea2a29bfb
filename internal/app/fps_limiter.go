package app

import "time"

// FPSLimiter caps the frame rate. The cap is read every frame so it can
// change while running.
type FPSLimiter struct {
	limit func() int
	next  time.Time
}

// NewFPSLimiter creates a limiter; limit returns the cap, <= 0 for none
func NewFPSLimiter(limit func() int) *FPSLimiter {
	return &FPSLimiter{limit: limit}
}

// Wait blocks until the next frame is due. It sleeps most of the gap and
// spins the last 200µs for precision at high caps.
func (f *FPSLimiter) Wait() {
	fps := 0
	if f.limit != nil {
		fps = f.limit()
	}
	if fps <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(fps)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
