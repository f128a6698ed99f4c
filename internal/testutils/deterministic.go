// Package testutils provides deterministic generators for devscout testing.
// These utilities ensure consistent test output while maintaining production
// format compatibility.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	mu          sync.Mutex
	testMode    bool
	idCounter   uint64
	timeCounter int64
)

// SetTestMode switches the generators between deterministic and production
// behavior. Tests should call ResetCounters alongside enabling it.
func SetTestMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	testMode = enabled
}

// ResetCounters rewinds the deterministic ID and time counters to zero.
func ResetCounters() {
	mu.Lock()
	defer mu.Unlock()
	idCounter = 0
	timeCounter = 0
}

// GenerateUUID generates a UUID that is deterministic in test mode but random
// in production. In test mode UUIDs follow the format
// 00000001-0000-4000-8000-000000000001, 00000002-..., etc.
func GenerateUUID() string {
	mu.Lock()
	defer mu.Unlock()
	if !testMode {
		return uuid.New().String()
	}
	idCounter++
	return fmt.Sprintf("%08d-0000-4000-8000-%012d", idCounter, idCounter)
}

// GetCurrentTime returns the current time, deterministic in test mode but
// real in production. In test mode it returns incrementing instants starting
// from 2025-01-01T00:00:00Z so ordering by timestamp stays stable.
func GetCurrentTime() time.Time {
	mu.Lock()
	defer mu.Unlock()
	if !testMode {
		return time.Now()
	}
	timeCounter++
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(timeCounter) * time.Second)
}
