// Package paths centralizes every filesystem location easiarr reads or writes.
//
// Persistent state (config.json, provisioning state, backups) lives in a single
// dot-directory in the user's home, matching where stack owners expect to find
// it. Logs and caches follow the XDG base directory spec.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// HomeOverride allows overriding the easiarr home directory for tests.
var HomeOverride string

const (
	homeDirName   = ".easiarr"
	configName    = "config.json"
	stateName     = "state.json"
	lockName      = "easiarr.lock"
	backupDirName = "backups"
)

// EnvHome is the environment variable that relocates the easiarr home directory.
const EnvHome = "EASIARR_HOME"

// Home returns the easiarr home directory, ~/.easiarr unless relocated
// via EASIARR_HOME.
func Home() string {
	if HomeOverride != "" {
		return HomeOverride
	}
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return homeDirName
	}
	return filepath.Join(home, homeDirName)
}

// ConfigFile returns the absolute path to config.json.
func ConfigFile() string {
	return filepath.Join(Home(), configName)
}

// StateFile returns the absolute path to the provisioning state file.
func StateFile() string {
	return filepath.Join(Home(), stateName)
}

// LockFile returns the absolute path to the provisioning run lock.
func LockFile() string {
	return filepath.Join(Home(), lockName)
}

// BackupsDir returns the directory that holds timestamped config backups.
func BackupsDir() string {
	return filepath.Join(Home(), backupDirName)
}

// LogDir returns the directory for log files, following XDG.
func LogDir() string {
	return filepath.Join(xdg.StateHome, "easiarr")
}

// LogFile returns the default log file path.
func LogFile() string {
	return filepath.Join(LogDir(), "easiarr.log")
}

// EnsureHome creates the easiarr home directory if it does not exist.
func EnsureHome() error {
	return os.MkdirAll(Home(), 0o755)
}

// Expand resolves a leading ~/ against the user's home directory. Settings
// store stack directories the way the user typed them; expansion happens at
// the point of use.
func Expand(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
