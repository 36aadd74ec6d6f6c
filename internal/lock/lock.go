package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const fileName = "LOCK"

// InUseError is returned when another chatterm process owns the profile.
type InUseError struct {
	PID  int
	Path string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("profile is open in another chatterm (PID %d, %s)", e.PID, e.Path)
}

// Lock is an exclusive flock on a profile directory.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the profile lock without blocking.
// Returns *InUseError if another process holds it.
func Acquire(profileDir string) (*Lock, error) {
	lockPath := filepath.Join(profileDir, fileName)

	if err := os.MkdirAll(profileDir, 0700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		pid, _ := Owner(profileDir)
		return nil, &InUseError{PID: pid, Path: lockPath}
	}

	if err := writeOwner(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Lock{file: f, path: lockPath}, nil
}

// Owner reports the PID recorded in the profile lock file, or 0 if none.
func Owner(profileDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(profileDir, fileName))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parsePID(string(data)), nil
}

// Release drops the lock. Safe on a nil or already released lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

func writeOwner(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f, "pid=%d\nsince=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	return err
}

func parsePID(content string) int {
	for _, line := range strings.Split(content, "\n") {
		if after, ok := strings.CutPrefix(line, "pid="); ok {
			pid, _ := strconv.Atoi(strings.TrimSpace(after))
			return pid
		}
	}
	return 0
}
