package sync

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RunSync mirrors extension-matched files from the input root into the output
// root for every directory pair that exists in both trees.
//
// The walk is fixed at two levels. First each subdirectory common to both
// roots is synchronized. Then every other path with common subdirectories is
// synchronized together with each of those subdirectories. A pair reached at
// both levels is synchronized once per visit.
func RunSync(ctx context.Context, options Options, logger *zap.Logger) (SyncResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := newSyncResult()
	fsys := options.filesystem()

	if err := requireDirectory(fsys, "input", options.InputRootPath); err != nil {
		logger.Error("validate input root", zap.String("root", options.InputRootPath), zap.Error(err))
		return result, err
	}
	if err := requireDirectory(fsys, "output", options.OutputRootPath); err != nil {
		logger.Error("validate output root", zap.String("root", options.OutputRootPath), zap.Error(err))
		return result, err
	}

	inputStructure, err := ScanDirectories(fsys, options.InputRootPath, options.IgnoreMatcher)
	if err != nil {
		logger.Error("scan input root", zap.String("root", options.InputRootPath), zap.Error(err))
		return result, err
	}
	outputStructure, err := ScanDirectories(fsys, options.OutputRootPath, options.IgnoreMatcher)
	if err != nil {
		logger.Error("scan output root", zap.String("root", options.OutputRootPath), zap.Error(err))
		return result, err
	}

	common := ReconcileStructures(inputStructure, outputStructure)
	logger.Info("found common directory structure", zap.Object("common", common))

	synchronizer := NewFileSynchronizer(fsys, options, logger)
	syncPair := func(relativePath string) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("synchronization interrupted: %w", err)
		}
		inputDir := filepath.Join(options.InputRootPath, relativePath)
		outputDir := filepath.Join(options.OutputRootPath, relativePath)
		directoryResult, err := synchronizer.SyncDirectory(ctx, inputDir, outputDir)
		result.add(directoryResult)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("synchronization interrupted: %w", err)
			}
			return err
		}
		return nil
	}

	for _, name := range common[""].Sorted() {
		logger.Info("syncing directory", zap.String("path", name))
		if err := syncPair(name); err != nil {
			return result, err
		}
	}

	for _, relativePath := range common.SortedPaths() {
		if relativePath == "" {
			continue
		}
		logger.Info("syncing directory", zap.String("path", relativePath))
		if err := syncPair(relativePath); err != nil {
			return result, err
		}
		for _, name := range common[relativePath].Sorted() {
			childPath := filepath.Join(relativePath, name)
			bothDirectories, err := pairIsDirectories(fsys, options, childPath)
			if err != nil {
				return result, err
			}
			if !bothDirectories {
				continue
			}
			logger.Info("syncing subdirectory", zap.String("path", childPath))
			if err := syncPair(childPath); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

func pairIsDirectories(fsys afero.Fs, options Options, relativePath string) (bool, error) {
	for _, root := range []string{options.InputRootPath, options.OutputRootPath} {
		path := filepath.Join(root, relativePath)
		isDirectory, err := afero.DirExists(fsys, path)
		if err != nil {
			return false, &IOError{Op: "stat", Source: path, Err: err}
		}
		if !isDirectory {
			return false, nil
		}
	}
	return true, nil
}
