// Package cache holds small in-process caches for hot read projections,
// keeping repeated summary reads off the document store.
package cache

import (
	"sync"
	"time"
)

// Purger is implemented by caches that can drop expired entries on demand.
type Purger interface {
	Purge() int
}

// Janitor periodically purges expired entries from the caches it watches.
type Janitor struct {
	mu      sync.Mutex
	watched []Purger
	stop    chan struct{}
	done    chan struct{}
}

func NewJanitor() *Janitor {
	return &Janitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Watch adds a cache to the purge rotation. Call before Start.
func (j *Janitor) Watch(p Purger) {
	j.mu.Lock()
	j.watched = append(j.watched, p)
	j.mu.Unlock()
}

// Start launches the purge loop in its own goroutine.
func (j *Janitor) Start(interval time.Duration) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.mu.Lock()
				for _, p := range j.watched {
					p.Purge()
				}
				j.mu.Unlock()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop ends the purge loop and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
