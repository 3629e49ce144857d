package realtime

import "time"

// retryDelay returns the wait before reconnect attempt n (1-based):
// base doubled per prior failure, capped at max. Attempt 1 waits base,
// attempt 2 waits 2*base, and so on.
func retryDelay(n int, base, max time.Duration) time.Duration {
	if n <= 1 {
		return base
	}
	delay := base
	for i := 1; i < n; i++ {
		delay *= 2
		if delay >= max || delay < 0 {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
