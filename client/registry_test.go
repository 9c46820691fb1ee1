package client

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContinueCooldown(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Minute)
	r.now = func() time.Time { return clock }

	assert.True(t, r.Continue("u1"))
	assert.False(t, r.Continue("u1"))
	assert.True(t, r.Continue("u2"))

	clock = clock.Add(61 * time.Second)
	assert.True(t, r.Continue("u1"))
}

func TestFlush(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Minute)
	r.now = func() time.Time { return clock }

	r.Continue("u1")
	clock = clock.Add(30 * time.Second)
	r.Continue("u2")
	assert.Equal(t, 2, r.Count())

	clock = clock.Add(40 * time.Second)
	r.Flush()
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, "u2", r.Dump(10)[0].Client)
}

func TestContinueConcurrent(t *testing.T) {
	r := NewRegistry(time.Hour)

	var wg sync.WaitGroup
	allowed := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- r.Continue("same")
		}()
	}
	wg.Wait()
	close(allowed)

	cnt := 0
	for ok := range allowed {
		if ok {
			cnt++
		}
	}
	assert.Equal(t, 1, cnt)
}

func TestDumpMax(t *testing.T) {
	r := NewRegistry(time.Hour)
	for i := 0; i < 5; i++ {
		r.Continue(fmt.Sprintf("u%d", i))
	}
	assert.Len(t, r.Dump(3), 3)
}
