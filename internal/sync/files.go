package sync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FileSynchronizer synchronizes the matching files of one directory pair.
// It never descends into subdirectories.
type FileSynchronizer struct {
	fsys            afero.Fs
	extensions      []string
	outputExtension string
	cleanMode       CleanMode
	dryRun          bool
	logger          *zap.Logger
}

// NewFileSynchronizer takes extensions, output extension, clean mode and the
// dry-run switch from options; the root paths are not used.
func NewFileSynchronizer(fsys afero.Fs, options Options, logger *zap.Logger) *FileSynchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleanMode := options.CleanMode
	if cleanMode == "" {
		cleanMode = CleanModeLiteral
	}
	return &FileSynchronizer{
		fsys:            fsys,
		extensions:      options.Extensions,
		outputExtension: options.OutputExtension,
		cleanMode:       cleanMode,
		dryRun:          options.DryRun,
		logger:          logger,
	}
}

// SyncDirectory first deletes matching files in outputDir that have no source
// in inputDir, then copies new files and rewrites changed ones. The first I/O
// failure aborts the call.
func (s *FileSynchronizer) SyncDirectory(ctx context.Context, inputDir string, outputDir string) (DirectoryResult, error) {
	result := DirectoryResult{InputDirectory: inputDir, OutputDirectory: outputDir}

	if err := s.cleanDirectory(ctx, inputDir, outputDir, &result); err != nil {
		return result, err
	}

	inputFiles, err := s.matchingFiles(inputDir)
	if err != nil {
		return result, err
	}
	for _, fileName := range inputFiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		inputPath := filepath.Join(inputDir, fileName)
		outputPath := filepath.Join(outputDir, OutputFilename(fileName, s.outputExtension))

		exists, statErr := afero.Exists(s.fsys, outputPath)
		if statErr != nil {
			return result, &IOError{Op: "stat", Destination: outputPath, Err: statErr}
		}
		if exists {
			err = s.updateContent(inputPath, outputPath, &result)
		} else {
			err = s.copyNewFile(inputPath, outputPath, &result)
		}
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *FileSynchronizer) cleanDirectory(ctx context.Context, inputDir string, outputDir string, result *DirectoryResult) error {
	outputFiles, err := s.matchingFiles(outputDir)
	if err != nil {
		return err
	}
	for _, fileName := range outputFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		sourcePath := filepath.Join(inputDir, s.sourceName(fileName))
		exists, statErr := afero.Exists(s.fsys, sourcePath)
		if statErr != nil {
			return &IOError{Op: "stat", Source: sourcePath, Err: statErr}
		}
		if exists {
			continue
		}

		outputPath := filepath.Join(outputDir, fileName)
		if !s.dryRun {
			if removeErr := s.fsys.Remove(outputPath); removeErr != nil {
				s.logger.Error("delete file", zap.String("path", outputPath), zap.Error(removeErr))
				return &IOError{Op: "delete", Destination: outputPath, Err: removeErr}
			}
		}
		result.Deleted++
		s.logger.Info("deleted file (not present in source)",
			zap.String("path", outputPath),
			zap.Bool("dry_run", s.dryRun),
		)
	}
	return nil
}

// sourceName is the input file name a destination file is checked against.
func (s *FileSynchronizer) sourceName(outputName string) string {
	if s.cleanMode == CleanModeStrip && s.outputExtension != "" {
		return strings.TrimSuffix(outputName, "."+s.outputExtension)
	}
	return outputName
}

func (s *FileSynchronizer) updateContent(inputPath string, outputPath string, result *DirectoryResult) error {
	sourceContent, err := afero.ReadFile(s.fsys, inputPath)
	if err != nil {
		s.logger.Error("read file", zap.String("path", inputPath), zap.Error(err))
		return &IOError{Op: "read", Source: inputPath, Destination: outputPath, Err: err}
	}
	destinationContent, err := afero.ReadFile(s.fsys, outputPath)
	if err != nil {
		s.logger.Error("read file", zap.String("path", outputPath), zap.Error(err))
		return &IOError{Op: "read", Source: inputPath, Destination: outputPath, Err: err}
	}

	if bytes.Equal(sourceContent, destinationContent) {
		result.Unchanged++
		s.logger.Debug("skipped update (content identical)", zap.String("path", outputPath))
		return nil
	}

	if !s.dryRun {
		// The existing file keeps its mode; perm only applies on creation.
		if err := afero.WriteFile(s.fsys, outputPath, sourceContent, 0o644); err != nil {
			s.logger.Error("write file", zap.String("path", outputPath), zap.Error(err))
			return &IOError{Op: "update", Source: inputPath, Destination: outputPath, Err: err}
		}
		result.BytesWritten += int64(len(sourceContent))
	}
	result.Updated++
	s.logger.Info("updated content",
		zap.String("source", inputPath),
		zap.String("destination", outputPath),
		zap.Bool("dry_run", s.dryRun),
	)
	return nil
}

func (s *FileSynchronizer) copyNewFile(inputPath string, outputPath string, result *DirectoryResult) error {
	sourceInfo, err := s.fsys.Stat(inputPath)
	if err != nil {
		return &IOError{Op: "copy", Source: inputPath, Destination: outputPath, Err: err}
	}

	if !s.dryRun {
		written, copyErr := copyFileContents(s.fsys, inputPath, outputPath, sourceInfo.Mode().Perm())
		if copyErr != nil {
			s.logger.Error("copy file", zap.String("source", inputPath), zap.String("destination", outputPath), zap.Error(copyErr))
			return &IOError{Op: "copy", Source: inputPath, Destination: outputPath, Err: copyErr}
		}
		s.preserveMetadata(outputPath, sourceInfo)
		result.BytesWritten += written
	}
	result.Copied++
	s.logger.Info("copied new file",
		zap.String("source", inputPath),
		zap.String("destination", outputPath),
		zap.Bool("dry_run", s.dryRun),
	)
	return nil
}

// preserveMetadata carries the source mode and modification time over to a
// freshly copied file. Failures are logged and otherwise ignored.
func (s *FileSynchronizer) preserveMetadata(outputPath string, sourceInfo fs.FileInfo) {
	if err := s.fsys.Chmod(outputPath, sourceInfo.Mode().Perm()); err != nil {
		s.logger.Warn("preserve file mode", zap.String("path", outputPath), zap.Error(err))
	}
	if err := s.fsys.Chtimes(outputPath, time.Now(), sourceInfo.ModTime()); err != nil {
		s.logger.Warn("preserve modification time", zap.String("path", outputPath), zap.Error(err))
	}
}

// matchingFiles lists the names of files directly inside dir that end with a
// configured extension. A symbolic link counts when it resolves to a file.
func (s *FileSynchronizer) matchingFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, &IOError{Op: "list", Source: dir, Err: err}
	}
	var names []string
	for _, entry := range entries {
		if !matchesExtension(entry.Name(), s.extensions) {
			continue
		}
		isFile, err := s.isRegularFile(filepath.Join(dir, entry.Name()), entry)
		if err != nil {
			return nil, err
		}
		if isFile {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (s *FileSynchronizer) isRegularFile(path string, entry fs.FileInfo) (bool, error) {
	if entry.Mode()&fs.ModeSymlink == 0 {
		return entry.Mode().IsRegular(), nil
	}
	target, err := s.fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &IOError{Op: "stat", Source: path, Err: err}
	}
	return target.Mode().IsRegular(), nil
}

func copyFileContents(fsys afero.Fs, sourcePath string, destinationPath string, perm fs.FileMode) (written int64, err error) {
	in, err := fsys.Open(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("cannot open file: %w", err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("cannot create file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("cannot close file: %w", closeErr)
		}
	}()

	if written, err = io.Copy(out, in); err != nil {
		return written, fmt.Errorf("cannot read/write file content: %w", err)
	}
	if err = out.Sync(); err != nil {
		return written, fmt.Errorf("cannot flush file: %w", err)
	}
	return written, nil
}
