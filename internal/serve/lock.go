package serve

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	lockWait       = 5 * time.Second
	lockRetryFirst = 5 * time.Millisecond
	lockRetryMax   = 50 * time.Millisecond
)

// portLock is an exclusive cross-process lock on .folio/media-port.lock. The
// holder's pid is written into the file so a waiter can say who it is.
type portLock struct {
	f *os.File
}

func lockPort(baseDir string, wait time.Duration) (*portLock, error) {
	f, err := os.OpenFile(portLockFilePath(baseDir), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open port lock file: %w", err)
	}

	deadline := time.Now().Add(wait)
	delay := lockRetryFirst
	for {
		ok, err := tryLockFile(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("lock %s: %w", portLockFileName, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			holder := lockHolder(f)
			f.Close()
			if holder > 0 {
				return nil, fmt.Errorf("media port lock held by pid %d for over %v", holder, wait)
			}
			return nil, fmt.Errorf("media port lock busy for over %v", wait)
		}
		time.Sleep(delay)
		delay = min(delay*2, lockRetryMax)
	}

	if err := f.Truncate(0); err == nil {
		f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
	}
	return &portLock{f: f}, nil
}

// Unlock releases the lock. The file stays for the next writer.
func (l *portLock) Unlock() {
	if l == nil || l.f == nil {
		return
	}
	unlockFile(l.f)
	l.f.Close()
	l.f = nil
}

func lockHolder(f *os.File) int {
	buf := make([]byte, 16)
	n, _ := f.ReadAt(buf, 0)
	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0
	}
	return pid
}
