package localefix

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// CacheDirs lists the UI framework's cache directories for a user.
// tempDir is only consulted on Windows.
func CacheDirs(home, goos, tempDir string) []string {
	dirs := []string{
		filepath.Join(home, ".gradio"),
		filepath.Join(home, ".cache", "gradio"),
		filepath.Join(home, ".cache", "huggingface"),
	}
	if goos == "windows" {
		return append(dirs, filepath.Join(tempDir, "gradio"))
	}
	return append(dirs, "/tmp/gradio")
}

// CleanCaches removes each existing directory and returns the ones removed.
// Missing directories are skipped silently. A failure is passed to report
// and the remaining directories are still processed.
func CleanCaches(dirs []string, report func(dir string, err error)) []string {
	var removed []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) && report != nil {
				report(dir, err)
			}
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			if report != nil {
				report(dir, err)
			}
			continue
		}
		removed = append(removed, dir)
	}
	return removed
}
