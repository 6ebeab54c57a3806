package test

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

const codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomCode returns a pseudo-random code of the given length.
func RandomCode(length int) string {
	if length <= 0 {
		length = 1
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = codeLetters[randomIntn(len(codeLetters))]
	}
	return string(buf)
}

// RandomUserID returns a positive pseudo-random platform id.
func RandomUserID() int64 {
	return int64(randomIntn(1_000_000_000)) + 1
}

// SequenceCodes returns a generator yielding CODE0001, CODE0002, ... It is
// safe for concurrent use.
func SequenceCodes() func() (string, error) {
	var n atomic.Int64
	return func() (string, error) {
		return fmt.Sprintf("CODE%04d", n.Add(1)), nil
	}
}

// ScriptedCodes returns the given codes in order, then falls back to
// SequenceCodes.
func ScriptedCodes(codes ...string) func() (string, error) {
	var (
		mu   sync.Mutex
		next = SequenceCodes()
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(codes) == 0 {
			return next()
		}
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a clock at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
