package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/prex/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

var defaultDirMode os.FileMode = 0o700

// basePrefix is the name of the per-user configuration and cache
// directories: the executable's base name without extension or leading dots.
// Binaries built by the dlv debugger use [pkg.Name].
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		if regexp.MustCompile(`^__debug_bin\d*$`).MatchString(id) {
			return pkg.Name
		}

		if id = strings.TrimLeft(id, "."); id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir joins basePrefix to the directory returned by base, falling back
// to hidden under the home directory, then the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
