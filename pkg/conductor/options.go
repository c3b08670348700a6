package conductor

import (
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Sets the time allowed for a service to start before timing out
func StartupTimeout(d time.Duration) func(*Conductor) {
	return func(c *Conductor) {
		c.startTimeout = d
	}
}

// Sets the time allowed for services to stop before giving up on them
func ShutdownTimeout(d time.Duration) func(*Conductor) {
	return func(c *Conductor) {
		c.stopTimeout = d
	}
}

// tells the Conductor to log progress
func Noisy() func(*Conductor) {
	return func(c *Conductor) {
		c.noisy = true
	}
}

// Hooks SIGTERM and SIGINT and shuts the Conductor down when one arrives.
func HookSignals() func(*Conductor) {
	return func(c *Conductor) {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			defer signal.Stop(sigCh)
			select {
			case sig := <-sigCh:
				c.logf("Caught %v signal, shutting down", sig)
				c.Stop()
			case <-c.shutdown:
			}
		}()
	}
}
