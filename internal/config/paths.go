package config

import (
	"os"
	"path/filepath"
)

const (
	// ProjectDirName is the name of the project-level directory
	ProjectDirName = ".locator"
	// DBFileName is the default database file name
	DBFileName = "locator.db"
)

// ProjectDir returns the project-level directory (.locator)
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, ProjectDirName)
}

// DefaultDBPath returns the default database path for a project
func DefaultDBPath(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), DBFileName)
}

// FindProjectRoot finds the project root by looking for .locator directory
func FindProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findRootFrom(cwd)
}

func findRootFrom(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectDirName)); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return start // fallback to starting directory
}
