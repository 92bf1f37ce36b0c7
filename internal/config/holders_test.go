package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHolder_LoadReflectsLatestStore(t *testing.T) {
	h := NewHolder(1)
	assert.Equal(t, 1, h.Load())

	h.Store(2)
	assert.Equal(t, 2, h.Load())
}

func TestHolder_ConcurrentAccessIsRaceFree(t *testing.T) {
	h := NewHolder(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			h.Store(n)
		}(i)
		go func() {
			defer wg.Done()
			_ = h.Load()
		}()
	}
	wg.Wait()
}
