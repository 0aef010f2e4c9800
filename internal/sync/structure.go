package sync

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// NameSet is a set of directory names without path separators.
type NameSet map[string]struct{}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (s NameSet) MarshalLogArray(encoder zapcore.ArrayEncoder) error {
	for _, name := range s.Sorted() {
		encoder.AppendString(name)
	}
	return nil
}

// DirectoryStructure maps a path relative to a tree root ("" for the root)
// to the names of its immediate subdirectories.
type DirectoryStructure map[string]NameSet

// CommonStructure maps a relative path to the subdirectory names found at
// that path in both trees. Every set is non-empty.
type CommonStructure map[string]NameSet

// SortedPaths returns the relative paths in lexical order; the root sorts first.
func (c CommonStructure) SortedPaths() []string {
	paths := make([]string, 0, len(c))
	for relativePath := range c {
		paths = append(paths, relativePath)
	}
	sort.Strings(paths)
	return paths
}

// MarshalLogObject implements zapcore.ObjectMarshaler. The root is logged as ".".
func (c CommonStructure) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	for _, relativePath := range c.SortedPaths() {
		key := relativePath
		if key == "" {
			key = "."
		}
		if err := encoder.AddArray(key, c[relativePath]); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileStructures keeps the paths present in both structures and, at each
// of them, the subdirectory names present on both sides. Paths whose
// intersection is empty are left out.
func ReconcileStructures(inputStructure DirectoryStructure, outputStructure DirectoryStructure) CommonStructure {
	common := CommonStructure{}
	for relativePath, inputNames := range inputStructure {
		outputNames, ok := outputStructure[relativePath]
		if !ok {
			continue
		}
		shared := NameSet{}
		for name := range inputNames {
			if outputNames.Has(name) {
				shared[name] = struct{}{}
			}
		}
		if len(shared) > 0 {
			common[relativePath] = shared
		}
	}
	return common
}
