package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the executable-relative directory layout. All pipeline
// artifacts live under DataDir so a deployment is a single directory
// next to the binaries.
type Paths struct {
	ExecutableDir string // Directory containing the executable
	DataDir       string // Root for all pipeline data
	InputDir      string // Raw sheet inputs (workbooks, CSV dumps)
	NormalizedDir string // Normalized dataset output
	ReferenceDir  string // Crosswalk feed and authority references
	LogsDir       string // Application logs
	WebDir        string // Optional static assets for the server
}

// GetPaths returns the directory layout anchored at the executable's
// directory. Symlinks are resolved so a linked binary still finds its
// data siblings.
func GetPaths() (*Paths, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(execPath)
	if err == nil {
		execPath = resolved
	}

	return NewPaths(filepath.Dir(execPath)), nil
}

// NewPaths builds the layout under the given base directory.
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		InputDir:      filepath.Join(dataDir, "input"),
		NormalizedDir: filepath.Join(dataDir, "normalized"),
		ReferenceDir:  filepath.Join(dataDir, "reference"),
		LogsDir:       filepath.Join(baseDir, "logs"),
		WebDir:        filepath.Join(baseDir, "web"),
	}
}

// EnsureDirectories creates the writable directories if they don't exist.
// WebDir is deploy-time content and is not created here.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.InputDir,
		p.NormalizedDir,
		p.ReferenceDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ReferencePath returns the path of a file in the reference directory.
func (p *Paths) ReferencePath(name string) string {
	return filepath.Join(p.ReferenceDir, name)
}

// NormalizedPath joins path elements under the normalized output root.
func (p *Paths) NormalizedPath(elem ...string) string {
	return filepath.Join(append([]string{p.NormalizedDir}, elem...)...)
}

// LogPath returns the path of a file in the logs directory.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}

// FileExists reports whether the path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
