// internal/platform/breaker/breaker.go
package breaker

import (
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Settings for outbound calls (SendGrid, payment gateway).
// Trips after 5 consecutive failures and probes again after 30s.
func Settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[breaker] %s: %s -> %s", name, from, to)
		},
	}
}

func New[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](Settings(name))
}
