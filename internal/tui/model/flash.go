package model

import (
	"sync"
	"time"
)

// FlashLevel selects how a notification is colored.
type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	FlashError
)

// Notification durations.
const (
	infoFlashTTL  = 3 * time.Second
	errorFlashTTL = 5 * time.Second
)

// Flash holds transient notification messages.
type Flash struct {
	mu      sync.RWMutex
	message string
	level   FlashLevel
	expires time.Time
}

// Set stores a flash message that expires after the given duration.
func (f *Flash) Set(msg string, level FlashLevel, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.level = level
	f.expires = time.Now().Add(d)
}

func (f *Flash) Info(msg string) {
	f.Set(msg, FlashInfo, infoFlashTTL)
}

func (f *Flash) Error(msg string) {
	f.Set(msg, FlashError, errorFlashTTL)
}

// Get returns the current flash message, or empty if expired.
func (f *Flash) Get() (string, FlashLevel) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return "", FlashInfo
	}
	return f.message, f.level
}
