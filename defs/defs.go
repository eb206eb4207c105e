package defs

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed *.yaml
var defsFS embed.FS

//go:embed scripts/*.tengo
var scriptsFS embed.FS

// Load returns a def file by name, preferring an on-disk copy under defs/
// so edits take effect without a rebuild, falling back to the embedded one.
func Load(name string) ([]byte, error) {
	clean := cleanDefPath(name)
	if data, err := os.ReadFile(diskDefPath(clean)); err == nil {
		return data, nil
	}
	return defsFS.ReadFile(clean)
}

// LoadScript returns a behaviour script by name, with the same disk-first
// search as Load.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskDefPath(clean)); err == nil {
		return data, nil
	}
	return scriptsFS.ReadFile(clean)
}

// ModTime reports the on-disk modification time of a def, if a disk copy
// exists.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskDefPath(cleanDefPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func cleanDefPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "defs/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "defs/scripts/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "defs/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskDefPath(clean string) string {
	return filepath.Join("defs", filepath.FromSlash(clean))
}
