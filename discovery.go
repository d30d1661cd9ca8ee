// FILE: nofus/discovery.go
package nofus

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions controls where DiscoverFile looks for a config file.
type FileDiscoveryOptions struct {
	// Name is the file name without extension, usually the application name.
	Name string

	// Extensions are appended to Name in order; "" tries the bare name.
	Extensions []string

	// Paths are searched before the current and XDG directories.
	Paths []string

	// EnvVar names a variable holding an explicit file path.
	EnvVar string

	// CLIFlag is looked up in the builder's args as "flag path" or "flag=path".
	// Leave it empty when a flag parser has already consumed the arguments.
	CLIFlag string

	UseXDG        bool
	UseCurrentDir bool
}

// DefaultDiscoveryOptions looks for appName.conf, appName.cfg or appName,
// honours APPNAME_CONFIG and --config, and searches the current and XDG
// directories.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".conf", ".cfg", ""},
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery sets the file from the first match of: the CLI flag in
// the builder's args, the environment variable, then the search paths.
// Finding nothing leaves the file unset.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path := DiscoverFile(opts, b.args); path != "" {
		b.file = path
	}
	return b
}

// DiscoverFile returns the config file selected by opts, or "".
func DiscoverFile(opts FileDiscoveryOptions, args []string) string {
	if path := flagValue(args, opts.CLIFlag); path != "" {
		return path
	}
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}

	for _, dir := range searchDirs(opts) {
		for _, ext := range opts.Extensions {
			candidate := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// flagValue finds "flag value" or "flag=value" in args. A flag with nothing
// after it yields "".
func flagValue(args []string, flag string) string {
	if flag == "" {
		return ""
	}
	for i, arg := range args {
		if arg == flag {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if value, ok := strings.CutPrefix(arg, flag+"="); ok {
			return value
		}
	}
	return ""
}

func searchDirs(opts FileDiscoveryOptions) []string {
	dirs := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, getXDGConfigPaths(opts.Name)...)
	}
	return dirs
}

// getXDGConfigPaths lists the user directory ($XDG_CONFIG_HOME or
// ~/.config) followed by the system ones ($XDG_CONFIG_DIRS, or /etc/xdg and
// /etc when unset), each joined with appName.
func getXDGConfigPaths(appName string) []string {
	var dirs []string

	switch home := os.Getenv("XDG_CONFIG_HOME"); {
	case home != "":
		dirs = append(dirs, filepath.Join(home, appName))
	case os.Getenv("HOME") != "":
		dirs = append(dirs, filepath.Join(os.Getenv("HOME"), ".config", appName))
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg", "/etc"}
	}
	for _, dir := range system {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	return dirs
}
