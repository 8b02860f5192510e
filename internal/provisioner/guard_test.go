package provisioner

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTenantGuard checks that the guard is exclusive per tenant and reusable
// after release
func TestTenantGuard(t *testing.T) {
	guard := newTenantGuard()

	assert.True(t, guard.acquire("tenant-1"))
	assert.False(t, guard.acquire("tenant-1"))
	assert.True(t, guard.acquire("tenant-2"), "tenants do not block each other")

	guard.release("tenant-1")
	assert.True(t, guard.acquire("tenant-1"))
}

// TestTenantGuardConcurrent checks that exactly one of many simultaneous
// acquirers wins
func TestTenantGuardConcurrent(t *testing.T) {
	guard := newTenantGuard()

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.acquire("tenant-1") {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
}
