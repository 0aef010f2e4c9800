package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarkoPoloResearchLab/extsync/internal/config"
	"github.com/MarkoPoloResearchLab/extsync/internal/logging"
	"github.com/MarkoPoloResearchLab/extsync/internal/report"
	syncpkg "github.com/MarkoPoloResearchLab/extsync/internal/sync"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
	exitIO       = 4
)

var errUsage = errors.New("usage error")

var (
	logger     *zap.Logger
	filesystem afero.Fs = afero.NewOsFs()
	rootCmd             = &cobra.Command{
		Use:           "extsync --input <dir> --output <dir> --config <file>",
		Short:         "Synchronize specific file types between directories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := viper.GetString("input")
			outputPath := viper.GetString("output")
			configPath := viper.GetString("config")
			ignoreFile := viper.GetString("ignore-file")
			dryRun := viper.GetBool("dry-run")

			for _, required := range []struct{ flag, value string }{
				{"input", inputPath},
				{"output", outputPath},
				{"config", configPath},
			} {
				if required.value == "" {
					err := fmt.Errorf("%w: --%s is required", errUsage, required.flag)
					logger.Error("missing "+required.flag, zap.Error(err))
					return err
				}
			}

			cleanMode, err := syncpkg.ParseCleanMode(viper.GetString("clean-mode"))
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}

			ignoreMatcher, err := loadIgnoreMatcher(filesystem, ignoreFile)
			if err != nil {
				logger.Error("read ignore file", zap.String("path", ignoreFile), zap.Error(err))
				return err
			}

			syncConfig, err := config.Load(filesystem, configPath)
			if err != nil {
				logger.Error("load configuration", zap.String("path", configPath), zap.Error(err))
				return err
			}
			logger.Info("loaded extensions to sync", zap.Strings("extensions", syncConfig.Extensions))
			if syncConfig.OutputExtension != "" {
				logger.Info("output files will have extension appended",
					zap.String("extension", "."+syncConfig.OutputExtension))
			}

			options := syncpkg.Options{
				InputRootPath:   inputPath,
				OutputRootPath:  outputPath,
				Extensions:      syncConfig.Extensions,
				OutputExtension: syncConfig.OutputExtension,
				IgnoreMatcher:   ignoreMatcher,
				CleanMode:       cleanMode,
				DryRun:          dryRun,
				Filesystem:      filesystem,
			}

			result, err := syncpkg.RunSync(cmd.Context(), options, logger)
			if err != nil {
				logger.Error("synchronization failed", zap.Error(err))
				return err
			}

			logger.Info("synchronization completed",
				zap.Int("directories", result.DirectoryCount),
				zap.Int("changed", result.ChangedFileCount),
				zap.Any("actions", result.ActionCounters),
				zap.String("written", humanize.Bytes(uint64(result.BytesWritten))),
				zap.Bool("dry_run", dryRun),
			)

			if viper.GetBool("summary") {
				if err := report.PrintSummary(cmd.OutOrStdout(), result); err != nil {
					logger.Error("print summary", zap.Error(err))
					return err
				}
			}
			return nil
		},
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.String("input", "", "path to the input directory")
	flags.String("output", "", "path to the output directory")
	flags.String("config", "", "path to the configuration file (json, yaml or toml)")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", logging.FormatConsole, "log format (console or json)")
	flags.String("clean-mode", string(syncpkg.CleanModeLiteral), "how output files are matched to their source when cleaning (literal or strip)")
	flags.Bool("dry-run", false, "log and count changes without touching the output tree")
	flags.String("ignore-file", ".extsyncignore", "path to .ignore-style file with directory patterns to skip")
	flags.Bool("summary", false, "print a per-directory summary table to stdout")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	bindConfiguration()

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		baseLogger, err := logging.NewLogger(logging.Options{
			Level:  viper.GetString("log-level"),
			Format: viper.GetString("log-format"),
		})
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		logger = baseLogger.With(zap.String("run_id", uuid.NewString()))
		return nil
	}
}

// bindConfiguration lets every flag be set through an EXTSYNC_ environment
// variable.
func bindConfiguration() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, name := range []string{"input", "output", "config", "log-level", "log-format", "clean-mode", "dry-run", "ignore-file", "summary"} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			os.Stderr.WriteString(err.Error() + "\n")
		}
		os.Exit(exitCode(err))
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func exitCode(err error) int {
	var ioErr *syncpkg.IOError
	switch {
	case errors.Is(err, errUsage), errors.Is(err, config.ErrConfig):
		return exitUsage
	case errors.Is(err, syncpkg.ErrRootNotFound):
		return exitNotFound
	case errors.As(err, &ioErr):
		return exitIO
	default:
		return exitFailure
	}
}

// loadIgnoreMatcher compiles the patterns in path. A missing file yields a
// matcher that ignores nothing.
func loadIgnoreMatcher(fsys afero.Fs, path string) (*ignore.GitIgnore, error) {
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ignore.CompileIgnoreLines(), nil
		}
		return nil, err
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ignore.CompileIgnoreLines(lines...), nil
}
