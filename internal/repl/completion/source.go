package completion

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Overridable for testing.
var (
	osReadDir = os.ReadDir
	osStat    = os.Stat
)

// Source enumerates raw completion candidates.
type Source interface {
	// ListExecutables returns the deduplicated, sorted names found in the
	// search path directories.
	ListExecutables() []string
	// ListPathEntries returns the entries of the directory implied by baseDir
	// joined with prefix whose names start with the last segment of prefix.
	ListPathEntries(baseDir, prefix string) []Candidate
}

// FileSystemSource reads PATH and directory listings fresh on every call.
// Unreadable directories are skipped.
type FileSystemSource struct {
	getenv func(string) string
	logger *zap.Logger
}

var _ Source = (*FileSystemSource)(nil)

// NewFileSystemSource creates a FileSystemSource backed by the process environment.
func NewFileSystemSource(logger *zap.Logger) *FileSystemSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemSource{
		getenv: os.Getenv,
		logger: logger,
	}
}

// ListExecutables returns every entry name of every PATH directory. A name
// seen in an earlier directory shadows the same name in later ones.
func (s *FileSystemSource) ListExecutables() []string {
	var names []string
	for _, dir := range filepath.SplitList(s.getenv("PATH")) {
		entries, err := osReadDir(dir)
		if err != nil {
			s.logger.Debug("skipping unreadable search path directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
	}

	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// ListPathEntries lists the directory part of prefix, resolved against
// baseDir, and keeps entries starting with the final segment of prefix.
// Directories are suffixed with a path separator.
func (s *FileSystemSource) ListPathEntries(baseDir, prefix string) []Candidate {
	dirPart, leaf := splitPathPrefix(prefix)
	dir := resolveDir(baseDir, dirPart)

	entries, err := osReadDir(dir)
	if err != nil {
		s.logger.Debug("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, leaf) {
			continue
		}
		if isDirEntry(dir, entry) {
			name += string(filepath.Separator)
		}
		candidates = append(candidates, Candidate{Display: name, Replacement: name})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Display < candidates[j].Display
	})
	return candidates
}

// splitPathPrefix splits a typed path into the directory part (including its
// trailing separator) and the final, possibly empty, segment.
func splitPathPrefix(prefix string) (dir, leaf string) {
	i := strings.LastIndexByte(prefix, filepath.Separator)
	if i < 0 {
		return "", prefix
	}
	return prefix[:i+1], prefix[i+1:]
}

func resolveDir(baseDir, dir string) string {
	if baseDir == "" {
		baseDir = "."
	}

	switch {
	case dir == "":
		return baseDir
	case strings.HasPrefix(dir, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return dir
		}
		return filepath.Join(home, dir[2:])
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(baseDir, dir)
	}
}

// isDirEntry reports whether entry is a directory, following symlinks.
func isDirEntry(dir string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := osStat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}
