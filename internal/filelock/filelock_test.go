package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestNewFileLock(t *testing.T) {
	target := filepath.Join(t.TempDir(), "srba.yaml")

	lock := NewFileLock(target)
	if lock == nil {
		t.Fatal("NewFileLock should not return nil")
	}
	if lock.Path() != target+".lock" {
		t.Errorf("Expected lock path %s.lock, got %s", target, lock.Path())
	}
}

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "srba.yaml"))

	if err := lock.Lock(context.Background()); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}
}

func TestLockCreatesParentDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "srba.yaml")
	lock := NewFileLock(target)

	if err := lock.Lock(context.Background()); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer lock.Unlock()

	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Errorf("Expected parent directory to exist: %v", err)
	}
}

func TestTryLockHeldElsewhere(t *testing.T) {
	target := filepath.Join(t.TempDir(), "srba.yaml")

	holder := NewFileLock(target)
	if err := holder.Lock(context.Background()); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	other := NewFileLock(target)
	acquired, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if acquired {
		t.Error("TryLock should fail while another holder has the lock")
	}

	holder.Unlock()

	acquired, err = other.TryLock()
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !acquired {
		t.Error("TryLock should succeed after release")
	}
	other.Unlock()
}

func TestLockTimeout(t *testing.T) {
	target := filepath.Join(t.TempDir(), "srba.yaml")

	holder := NewFileLock(target)
	if err := holder.Lock(context.Background()); err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	err := NewFileLock(target).Lock(ctx)
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("Expected ErrLockTimeout, got %v", err)
	}
}

func TestConcurrentLocking(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "counter.txt")
	if err := os.WriteFile(target, []byte("0"), 0644); err != nil {
		t.Fatal(err)
	}

	const goroutines = 5
	const iterations = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				lock := NewFileLock(target)
				if err := lock.Lock(context.Background()); err != nil {
					t.Errorf("Failed to acquire lock: %v", err)
					return
				}

				data, err := os.ReadFile(target)
				if err == nil {
					n, _ := strconv.Atoi(string(data))
					err = AtomicWrite(target, []byte(strconv.Itoa(n+1)), 0644)
				}
				lock.Unlock()
				if err != nil {
					t.Errorf("Critical section failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != strconv.Itoa(goroutines*iterations) {
		t.Errorf("Expected counter %d, got %s", goroutines*iterations, data)
	}
}

func TestAtomicWrite(t *testing.T) {
	t.Run("new file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg", "srba.yaml")

		if err := AtomicWrite(path, []byte("max_iters: 20\n"), 0600); err != nil {
			t.Fatalf("AtomicWrite failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "max_iters: 20\n" {
			t.Errorf("Unexpected content %q", data)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
		}
	})

	t.Run("overwrite leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "srba.yaml")

		for i := 0; i < 3; i++ {
			if err := AtomicWrite(path, []byte(fmt.Sprintf("v%d", i)), 0644); err != nil {
				t.Fatalf("AtomicWrite failed: %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected only the target file, got %d entries", len(entries))
		}
		data, _ := os.ReadFile(path)
		if string(data) != "v2" {
			t.Errorf("Expected last write to win, got %q", data)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		os.WriteFile(blocker, []byte("x"), 0644)

		if err := AtomicWrite(filepath.Join(blocker, "srba.yaml"), []byte("x"), 0644); err == nil {
			t.Error("Expected error when parent path is a regular file")
		}
	})
}

func TestLockAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srba.yaml")

	if err := LockAndWrite(context.Background(), path, []byte("submap_size: 20\n")); err != nil {
		t.Fatalf("LockAndWrite failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "submap_size: 20\n" {
		t.Errorf("Unexpected content %q", data)
	}

	// The lock must be released afterwards.
	acquired, err := NewFileLock(path).TryLock()
	if err != nil || !acquired {
		t.Errorf("Expected lock to be free after LockAndWrite, acquired=%v err=%v", acquired, err)
	}
}

func TestLockAndWriteCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srba.yaml")

	holder := NewFileLock(path)
	if err := holder.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := LockAndWrite(ctx, path, []byte("x")); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Expected ErrLockTimeout, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Target must not be written when the lock is not acquired")
	}
}
