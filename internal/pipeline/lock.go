package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockPath returns the run-lock file for root: one per absolute input path,
// in the OS temp dir so the input tree is never written to.
func lockPath(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "silk2mp3-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// acquireLock takes the exclusive run lock for root without blocking.
func acquireLock(root string) (*flock.Flock, error) {
	path, err := lockPath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve lock path: %w", err)
	}
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (lock %s)", ErrLocked, root, path)
	}
	return l, nil
}
