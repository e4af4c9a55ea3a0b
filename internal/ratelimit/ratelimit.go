// Package ratelimit implements the per-IP admission limiter described in
// SPEC_FULL.md §4.1: a window request count plus a concurrent-connection cap,
// backed by a single mutex-guarded map with a hard capacity bound and smart
// LRU eviction. It is grounded on original_source/src/server.rs's
// RateLimiter/ConnectionInfo for the accounting rules, generalized from a
// plain HashMap to a bounded, evictable table per SPEC_FULL.md's capacity
// bound requirement.
package ratelimit

import (
	"net"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries is the hard cap on tracked IPs (SPEC_FULL.md §4.1).
	DefaultMaxEntries = 100_000

	windowDuration    = 60 * time.Second
	idleRetention     = 2 * time.Minute
	pressureRetention = 30 * time.Second
)

// entry is one IP's rolling window + concurrency state.
type entry struct {
	windowRequestCount int
	windowStart        time.Time
	activeConnections  int
	lastActivity       time.Time
}

// Limiter is the per-IP admission limiter. Zero value is not usable; use New.
type Limiter struct {
	mu sync.Mutex

	maxRequestsPerWindow int
	maxConcurrentPerIP   int
	maxEntries           int

	entries map[string]*entry
	// lru orders known IPs from least-recently-active (front) to
	// most-recently-active (back) so eviction visits entries coldest first
	// rather than in map order; finding the coldest idle entry is still a
	// linear walk over the ordered keys.
	lru *lruList

	now func() time.Time
}

// New builds a Limiter with the given per-minute request cap and per-IP
// concurrent-connection cap, and the default hard entry cap.
func New(maxRequestsPerWindow, maxConcurrentPerIP int) *Limiter {
	return &Limiter{
		maxRequestsPerWindow: maxRequestsPerWindow,
		maxConcurrentPerIP:   maxConcurrentPerIP,
		maxEntries:           DefaultMaxEntries,
		entries:              make(map[string]*entry),
		lru:                  newLRUList(),
		now:                  time.Now,
	}
}

// Check atomically consults and updates the entry for ip, keyed by the
// address's String() form. It
// returns false if the IP is already at its concurrent-connection cap or has
// exhausted its per-window request budget, and true (after incrementing both
// counters) otherwise.
func (l *Limiter) Check(ip net.IP) bool {
	return l.check(keyOf(ip))
}

func keyOf(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}

func (l *Limiter) check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= l.maxEntries {
			if !l.evictColdestLocked() {
				return false
			}
		}
		e = &entry{windowStart: now}
		l.entries[key] = e
		l.lru.touch(key)
	}

	elapsed := now.Sub(e.windowStart)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= windowDuration {
		e.windowRequestCount = 0
		e.windowStart = now
	}

	if e.activeConnections >= l.maxConcurrentPerIP {
		l.lru.touch(key)
		e.lastActivity = now
		return false
	}
	if e.windowRequestCount >= l.maxRequestsPerWindow {
		l.lru.touch(key)
		e.lastActivity = now
		return false
	}

	e.windowRequestCount++
	e.activeConnections++
	e.lastActivity = now
	l.lru.touch(key)
	return true
}

// Release decrements the IP's active-connection count, saturating at zero.
// Every Check that returns true must be matched by exactly one Release.
func (l *Limiter) Release(ip net.IP) {
	key := keyOf(ip)
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		return
	}
	if e.activeConnections > 0 {
		e.activeConnections--
	}
}

// CleanupIdle removes entries whose last activity exceeds the idle retention
// window (2 minutes). Intended to be called periodically from a housekeeping
// goroutine.
func (l *Limiter) CleanupIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evictWhereLocked(func(e *entry) bool {
		return now.Sub(e.lastActivity) > idleRetention
	})
}

// CleanupPressure performs an aggressive eviction, retaining only entries
// with active connections or activity within the last 30 seconds. Intended
// to be triggered by an external memory-pressure signal.
func (l *Limiter) CleanupPressure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.evictWhereLocked(func(e *entry) bool {
		return e.activeConnections == 0 && now.Sub(e.lastActivity) > pressureRetention
	})
}

func (l *Limiter) evictWhereLocked(shouldEvict func(*entry) bool) {
	for key, e := range l.entries {
		if shouldEvict(e) {
			delete(l.entries, key)
			l.lru.remove(key)
		}
	}
}

// evictColdestLocked evicts the single entry with the oldest last-activity
// that currently has zero active connections (smart LRU). Returns false if
// every tracked entry has at least one active connection, in which case the
// caller must reject the new IP rather than grow the table.
func (l *Limiter) evictColdestLocked() bool {
	for _, key := range l.lru.orderedKeys() {
		e, ok := l.entries[key]
		if !ok {
			l.lru.remove(key)
			continue
		}
		if e.activeConnections == 0 {
			delete(l.entries, key)
			l.lru.remove(key)
			return true
		}
	}
	return false
}

// Len returns the number of tracked IPs, for tests and metrics.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
