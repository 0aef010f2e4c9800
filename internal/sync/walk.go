package sync

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// ScanDirectories walks the tree under rootPath and records, for every
// directory, the names of its immediate subdirectories. The root is keyed by
// the empty path. Directories matched by ignoreMatcher are neither recorded
// nor descended into. A symbolic link to a directory is recorded by name but
// not descended into.
func ScanDirectories(fsys afero.Fs, rootPath string, ignoreMatcher *ignore.GitIgnore) (DirectoryStructure, error) {
	if err := requireDirectory(fsys, "root", rootPath); err != nil {
		return nil, err
	}
	structure := DirectoryStructure{}
	if err := scanDirectory(fsys, rootPath, "", ignoreMatcher, structure); err != nil {
		return nil, err
	}
	return structure, nil
}

func scanDirectory(fsys afero.Fs, rootPath string, relativePath string, ignoreMatcher *ignore.GitIgnore, structure DirectoryStructure) error {
	currentPath := filepath.Join(rootPath, relativePath)
	entries, err := afero.ReadDir(fsys, currentPath)
	if err != nil {
		return &IOError{Op: "scan", Source: currentPath, Err: err}
	}

	subdirectories := NameSet{}
	structure[relativePath] = subdirectories
	for _, entry := range entries {
		childPath := filepath.Join(relativePath, entry.Name())
		isLink := entry.Mode()&fs.ModeSymlink != 0
		isDirectory := entry.IsDir()
		if isLink {
			linked, err := linksToDirectory(fsys, filepath.Join(rootPath, childPath))
			if err != nil {
				return err
			}
			isDirectory = linked
		}
		if !isDirectory || shouldIgnore(childPath, true, ignoreMatcher) {
			continue
		}
		subdirectories[entry.Name()] = struct{}{}
		// A linked directory is listed by name but its contents are not scanned.
		if isLink {
			continue
		}
		if err := scanDirectory(fsys, rootPath, childPath, ignoreMatcher, structure); err != nil {
			return err
		}
	}
	return nil
}

// linksToDirectory reports whether the symbolic link at path resolves to a
// directory. Dangling links resolve to nothing.
func linksToDirectory(fsys afero.Fs, path string) (bool, error) {
	target, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &IOError{Op: "stat", Source: path, Err: err}
	}
	return target.IsDir(), nil
}

// requireDirectory returns a *NotFoundError unless path is an existing directory.
func requireDirectory(fsys afero.Fs, role string, path string) error {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Role: role, Path: path}
		}
		return &IOError{Op: "stat", Source: path, Err: err}
	}
	if !info.IsDir() {
		return &NotFoundError{Role: role, Path: path, Err: errors.New("not a directory")}
	}
	return nil
}

func shouldIgnore(relativePath string, isDir bool, ignoreMatcher *ignore.GitIgnore) bool {
	if ignoreMatcher == nil {
		return false
	}
	normalized := filepath.ToSlash(relativePath)
	if isDir {
		normalized += "/"
	}
	return ignoreMatcher.MatchesPath(normalized)
}

// matchesExtension is a plain suffix test: ".txt" and "txt" both match "foo.txt".
func matchesExtension(fileName string, extensions []string) bool {
	for _, extension := range extensions {
		if strings.HasSuffix(fileName, extension) {
			return true
		}
	}
	return false
}

// OutputFilename appends "."+outputExtension to fileName when outputExtension
// is set and returns fileName unchanged otherwise.
func OutputFilename(fileName string, outputExtension string) string {
	if outputExtension != "" {
		return fileName + "." + outputExtension
	}
	return fileName
}
