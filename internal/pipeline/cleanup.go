package pipeline

import (
	"log"
	"os"
)

// cleanup tracks every ephemeral resource a generation call acquires:
// local temp files and the remote staging object. Run executes on every
// exit path; no path may leave an orphan behind. Remote deletion is
// best-effort — the artifact is already durable by the time it matters —
// so its failure is logged, never propagated.
type cleanup struct {
	files  []string
	remote []func() error
}

func (c *cleanup) addFile(path string) {
	c.files = append(c.files, path)
}

func (c *cleanup) addRemote(fn func() error) {
	c.remote = append(c.remote, fn)
}

func (c *cleanup) run() {
	for _, fn := range c.remote {
		if err := fn(); err != nil {
			log.Printf("[CLEANUP] failed to delete staged object: %v", err)
		}
	}
	for _, path := range c.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[CLEANUP] failed to remove temp file %s: %v", path, err)
		}
	}
	c.remote = nil
	c.files = nil
}
