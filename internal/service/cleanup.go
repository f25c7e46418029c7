package service

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// CleanupGuard owns a set of staged local files and guarantees each is
// submitted for deletion exactly once, on every exit path of the scope
// holding it. Deletion runs in the background; the pipeline does not
// wait on it.
type CleanupGuard struct {
	logger *logrus.Logger
	mu     sync.Mutex
	paths  []string
	once   sync.Once
}

func NewCleanupGuard(logger *logrus.Logger) *CleanupGuard {
	return &CleanupGuard{logger: logger}
}

// Add registers staged paths for deletion. Paths added after Release
// are not picked up, so callers add before the owning scope can exit.
func (g *CleanupGuard) Add(paths ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paths = append(g.paths, paths...)
}

// Release schedules deletion of every registered path. Safe to call
// multiple times; only the first call schedules anything.
func (g *CleanupGuard) Release() {
	g.once.Do(func() {
		g.mu.Lock()
		paths := g.paths
		g.paths = nil
		g.mu.Unlock()

		if len(paths) == 0 {
			return
		}

		go func() {
			for _, path := range paths {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					g.logger.WithError(err).WithField("path", path).Warn("Failed to remove staged file")
				}
			}
			g.logger.WithField("count", len(paths)).Debug("Staged files cleaned up")
		}()
	})
}
