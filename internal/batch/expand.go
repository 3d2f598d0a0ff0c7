package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions are the file types collected from directory arguments
var Extensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".aif", ".aiff"}

// HasAudioExtension reports whether path ends in one of Extensions, ignoring case
func HasAudioExtension(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Expand turns command line arguments into a list of files. Files are kept
// as given; directories contribute their audio files, sorted by name, without
// descending into subdirectories. Directory entries whose base name already
// ends with skipSuffix are previous outputs and left out. Duplicates are
// dropped, keeping the first occurrence.
func Expand(args []string, skipSuffix string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot list %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || !HasAudioExtension(e.Name()) {
				continue
			}
			stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			if skipSuffix != "" && strings.HasSuffix(stem, skipSuffix) {
				continue
			}
			add(filepath.Join(arg, e.Name()))
		}
	}
	return files, nil
}
