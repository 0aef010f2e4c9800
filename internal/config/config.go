// Package config loads the synchronization settings document.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "EXTSYNC"

	keyFileExtensions  = "file_extensions"
	keyOutputExtension = "output_extension"
)

// ErrConfig is matched by every *ConfigError.
var ErrConfig = errors.New("configuration error")

// ConfigError reports a settings document that is missing, malformed or
// incomplete.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SyncConfig selects which files are synchronized and how they are named in
// the output tree.
type SyncConfig struct {
	// Extensions are plain name suffixes; ".md" and "md" both match "a.md".
	Extensions []string `mapstructure:"file_extensions" validate:"dive,required"`
	// OutputExtension is appended after a dot to copied file names when set.
	OutputExtension string `mapstructure:"output_extension" validate:"excludesall=/"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// splitListHook decodes a separated string, as set through the environment,
// into a list. Entries are trimmed of surrounding spaces. Lists written in
// the document are decoded untouched.
func splitListHook(separator string) mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
			return data, nil
		}
		raw, ok := data.(string)
		if !ok {
			return data, nil
		}
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, separator)
		for index, part := range parts {
			parts[index] = strings.TrimSpace(part)
		}
		return parts, nil
	}
}

// Load reads the document at path from fsys. The format follows the file
// extension; a path without one is read as JSON. An empty file_extensions
// list is accepted and matches nothing. EXTSYNC_FILE_EXTENSIONS
// (comma separated) and EXTSYNC_OUTPUT_EXTENSION override the document.
func Load(fsys afero.Fs, path string) (SyncConfig, error) {
	var cfg SyncConfig

	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindEnv(keyFileExtensions); err != nil {
		return cfg, &ConfigError{Path: path, Reason: "bind environment", Err: err}
	}
	if err := v.BindEnv(keyOutputExtension); err != nil {
		return cfg, &ConfigError{Path: path, Reason: "bind environment", Err: err}
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, &ConfigError{Path: path, Reason: "configuration file not found", Err: err}
		}
		return cfg, &ConfigError{Path: path, Reason: "invalid configuration document", Err: err}
	}

	if !v.IsSet(keyFileExtensions) {
		return cfg, &ConfigError{Path: path, Reason: fmt.Sprintf("missing required field %q", keyFileExtensions)}
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(splitListHook(","))); err != nil {
		return cfg, &ConfigError{Path: path, Reason: "invalid configuration document", Err: err}
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, &ConfigError{Path: path, Reason: "invalid configuration", Err: err}
	}
	return cfg, nil
}
