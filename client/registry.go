package client

import (
	"sync"
	"time"
)

type request struct {
	Client   string
	Accessed time.Time
}

// Registry remembers when a client (eg. a user requesting a new verification code)
// was last let through, so repeated requests within the cooldown can be refused.
// https://blog.golang.org/maps
// access to the map is mediated using a mutex since handlers run concurrently
type Registry struct {
	sync.RWMutex
	cooldown time.Duration
	requests map[string]request // key is user id + action (eg. resend)
	now      func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(cooldown time.Duration) *Registry {
	return &Registry{
		cooldown: cooldown,
		requests: make(map[string]request),
		now:      time.Now,
	}
}

// Continue reports whether the client may proceed and records the access if so
func (r *Registry) Continue(client string) bool {

	now := r.now()

	r.Lock()
	defer r.Unlock()

	last, found := r.requests[client]
	if found && now.Sub(last.Accessed) < r.cooldown {
		return false
	}

	r.requests[client] = request{
		Client:   client,
		Accessed: now,
	}

	return true
}

// Flush removes requests whose cooldown is over
// usually called by a GO-routine that runs in a ticker
func (r *Registry) Flush() {

	now := r.now()

	r.Lock()
	// it's safe to delete while ranging over a map
	for key, value := range r.requests {
		if now.Sub(value.Accessed) >= r.cooldown {
			delete(r.requests, key)
		}
	}
	r.Unlock()
}

// Count returns how many different clients are currently throttled (or were)
func (r *Registry) Count() int {
	r.RLock()
	cnt := len(r.requests)
	r.RUnlock()
	return cnt
}

// Dump returns the last access of up to max clients
func (r *Registry) Dump(max int) []request {

	r.RLock()
	defer r.RUnlock()

	res := make([]request, 0, len(r.requests))
	for _, v := range r.requests {
		if len(res) >= max {
			break
		}
		res = append(res, v)
	}

	return res
}
