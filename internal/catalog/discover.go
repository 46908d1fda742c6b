package catalog

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fxchain/internal/logging"
)

// Discover walks each root and returns the deduplicated, sorted set of
// plugin bundle paths. A directory whose name ends in one of the suffixes
// is a bundle and is not descended into. Unreadable subtrees are skipped
// with a warning so one bad mount cannot sink a whole discovery run.
func Discover(roots, suffixes []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = logging.NewNop()
	}
	seen := make(map[string]struct{})

	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			logger.Debug("discovery root unavailable",
				logging.String("root", root),
				logging.Error(err))
			continue
		}

		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				logger.Warn("skipping unreadable path",
					logging.String("path", path),
					logging.Error(walkErr))
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !entry.IsDir() {
				return nil
			}
			if isBundle(entry.Name(), suffixes) {
				seen[path] = struct{}{}
				return fs.SkipDir
			}
			return nil
		})
		if err != nil {
			logger.Warn("discovery walk aborted",
				logging.String("root", root),
				logging.Error(err))
		}
	}

	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func isBundle(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
