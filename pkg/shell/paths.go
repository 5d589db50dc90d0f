package shell

import (
	"errors"
	"os"
	"path/filepath"
)

// Environment variables consulted for the default paths.
const (
	envHome          = "HOME"
	envXDGConfigHome = "XDG_CONFIG_HOME"
	envXDGStateHome  = "XDG_STATE_HOME"
)

var (
	defaultConfigHome = homePath(".config")
	defaultStateHome  = homePath(".local", "state")
)

var errNoHome = errors.New("cannot determine home directory")

func homePath(elems ...string) func() (string, error) {
	return func() (string, error) {
		home := os.Getenv(envHome)
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil || home == "" {
				return "", errNoHome
			}
		}
		return filepath.Join(append([]string{home}, elems...)...), nil
	}
}

// Returns the exline directory in the XDG base directory named by env, or
// under the default one.
func xdgDir(env string, def func() (string, error)) (string, error) {
	if dir := os.Getenv(env); dir != "" && filepath.IsAbs(dir) {
		return filepath.Join(dir, "exline"), nil
	}
	dir, err := def()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exline"), nil
}

// RCPath returns the path of rc.ex, the Ex script sourced in interactive
// mode.
func RCPath() (string, error) {
	dir, err := xdgDir(envXDGConfigHome, defaultConfigHome)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rc.ex"), nil
}

// ConfigPath returns the path of options.yaml, which holds option values.
func ConfigPath() (string, error) {
	dir, err := xdgDir(envXDGConfigHome, defaultConfigHome)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "options.yaml"), nil
}

// DBPath returns the path of the database, creating its directory.
func DBPath() (string, error) {
	dir, err := xdgDir(envXDGStateHome, defaultStateHome)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "db"), nil
}
