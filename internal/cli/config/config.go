// --- START OF FINAL REVISED FILE internal/cli/config/config.go ---
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aben20807/exif-count/pkg/photostat"
	"github.com/aben20807/exif-count/pkg/util"
)

const (
	EnvPrefix         = "EXIFCOUNT"
	DefaultConfigName = "exif-count"
)

// flagBindings maps configuration keys to the flag that overrides them.
var flagBindings = map[string]string{
	"src":          "src",
	"recursive":    "recursive",
	"dir_filter":   "dir_filter",
	"img_exts":     "img_exts",
	"concurrency":  "concurrency",
	"taskTimeout":  "task-timeout",
	"outputFormat": "output-format",
	"chartWidth":   "chart-width",
	"verbose":      "verbose",
}

// LoadAndValidate loads configuration from all sources (defaults, file, profile, env, flags),
// validates the merged configuration and derives the remaining values (absolute source
// path, parsed task timeout, effective TUI mode). It also sets up the logger.
// Returns the populated Options struct or an error.
func LoadAndValidate(cfgFile, profileName, appVersion string, verbose bool, flags *pflag.FlagSet) (photostat.Options, *slog.Logger, error) {
	var opts photostat.Options
	v := viper.New()

	// Temporary logger for errors met before the final level is known
	tempLevel := slog.LevelInfo
	if verbose {
		tempLevel = slog.LevelDebug
	}
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: tempLevel}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		} else {
			tempLogger.Debug("Failed to get user home directory, skipping home config paths", slog.Any("error", err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", configFileUsed, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	// --- Apply Profile ---
	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		if !v.IsSet(profileKey) {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("profile '%s' not found in config file '%s'", profileName, configPath)
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		profileSettings := v.Sub(profileKey)
		if profileSettings == nil {
			err := fmt.Errorf("failed to load profile '%s' settings from config file '%s'", profileName, v.ConfigFileUsed())
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		if err := v.MergeConfigMap(profileSettings.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	for key, flagName := range flagBindings {
		flag := flags.Lookup(flagName)
		if flag == nil {
			tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", flagName))
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			tempLogger.Error("Error binding flag", slog.String("flag", flagName), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", flagName, err)
		}
	}

	// --- Unmarshal Final Configuration ---
	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// --- Explicitly Handle Flag Overrides ---
	if flags.Changed("src") {
		if src, _ := flags.GetString("src"); src != "" {
			opts.SourcePath = src
			tempLogger.Debug("Source path explicitly set from flag", slog.String("path", opts.SourcePath))
		}
	}
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("recursive") {
		opts.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("no-tui") {
		if noTui, _ := flags.GetBool("no-tui"); noTui {
			opts.TuiEnabled = false
		}
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler
	opts.Fs = afero.NewOsFs()

	// --- Parse the task timeout ---
	taskTimeout, err := time.ParseDuration(opts.TaskTimeoutString)
	if err != nil {
		err = fmt.Errorf("%w: invalid task timeout '%s' for key 'taskTimeout' (flag --task-timeout): %w", photostat.ErrConfigValidation, opts.TaskTimeoutString, err)
		logger.Error(err.Error(), slog.String("key", "taskTimeout"), slog.String("value", opts.TaskTimeoutString))
		return opts, logger, err
	}
	if taskTimeout <= 0 {
		err = fmt.Errorf("%w: invalid task timeout '%s' for key 'taskTimeout'. Must be > 0", photostat.ErrConfigValidation, opts.TaskTimeoutString)
		logger.Error(err.Error(), slog.String("key", "taskTimeout"), slog.String("value", opts.TaskTimeoutString))
		return opts, logger, err
	}
	opts.TaskTimeout = taskTimeout

	// --- Final Validation and Derivations ---
	if err := validateAndDeriveOptions(&opts, logger, flags); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)

	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	// --- Source selection ---
	v.SetDefault("src", "")
	v.SetDefault("recursive", photostat.DefaultRecursive)
	v.SetDefault("dir_filter", photostat.DefaultDirFilter)
	v.SetDefault("img_exts", photostat.DefaultImageExtensions)

	// --- Behavior & Control ---
	v.SetDefault("verbose", photostat.DefaultVerbose)
	v.SetDefault("tuiEnabled", photostat.DefaultTuiEnabled)

	// --- Performance ---
	v.SetDefault("concurrency", photostat.DefaultConcurrency)
	v.SetDefault("taskTimeout", photostat.DefaultTaskTimeoutString)

	// --- Output ---
	v.SetDefault("outputFormat", string(photostat.DefaultOutputFormat))
	v.SetDefault("chartWidth", photostat.DefaultChartWidth)
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
// Case-sensitive comparison.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions performs semantic validation on the populated Options struct
// and calculates derived fields. It wraps errors with photostat.ErrConfigValidation.
func validateAndDeriveOptions(opts *photostat.Options, logger *slog.Logger, flags *pflag.FlagSet) error {
	// === Path Validations ===
	if opts.SourcePath == "" {
		err := fmt.Errorf("%w: source path is required (-s, --src)", photostat.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "src"))
		return err
	}
	absSrc, err := filepath.Abs(opts.SourcePath)
	if err != nil {
		err = fmt.Errorf("%w: cannot resolve absolute source path '%s': %w", photostat.ErrConfigValidation, opts.SourcePath, err)
		logger.Error(err.Error(), slog.String("key", "src"), slog.String("value", opts.SourcePath))
		return err
	}
	opts.SourceArg = opts.SourcePath
	opts.SourcePath = absSrc
	info, err := opts.Fs.Stat(opts.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: source path '%s' does not exist", photostat.ErrConfigValidation, opts.SourcePath)
			logger.Error(err.Error(), slog.String("key", "src"), slog.String("value", opts.SourcePath))
			return err
		}
		err = fmt.Errorf("%w: cannot access source path '%s': %w", photostat.ErrConfigValidation, opts.SourcePath, err)
		logger.Error(err.Error(), slog.String("key", "src"), slog.String("value", opts.SourcePath))
		return err
	}
	if !info.IsDir() {
		err = fmt.Errorf("%w: source path '%s' is not a directory", photostat.ErrConfigValidation, opts.SourcePath)
		logger.Error(err.Error(), slog.String("key", "src"), slog.String("value", opts.SourcePath))
		return err
	}
	logger.Debug("Validated source path", slog.String("path", opts.SourcePath))

	if len(util.ParseExtensions(opts.ImageExtensions)) == 0 {
		err := fmt.Errorf("%w: key 'img_exts' (flag --img_exts) lists no extensions", photostat.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "img_exts"), slog.String("value", opts.ImageExtensions))
		return err
	}

	// === Enum String Validations ===
	allowedOutputFormat := []photostat.OutputFormat{photostat.OutputFormatText, photostat.OutputFormatJSON, photostat.OutputFormatYAML, photostat.OutputFormatTOML}
	if !isValidEnumValue(opts.OutputFormat, allowedOutputFormat) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: %v", photostat.ErrConfigValidation, opts.OutputFormat, allowedOutputFormat)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", string(opts.OutputFormat)))
		return err
	}

	// === Numeric Range Validations ===
	if opts.Concurrency < 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'concurrency' (flag --concurrency). Must be >= 0", photostat.ErrConfigValidation, opts.Concurrency)
		logger.Error(err.Error(), slog.String("key", "concurrency"), slog.Int("value", opts.Concurrency))
		return err
	}
	if opts.ChartWidth < 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'chartWidth' (flag --chart-width). Must be >= 0", photostat.ErrConfigValidation, opts.ChartWidth)
		logger.Error(err.Error(), slog.String("key", "chartWidth"), slog.Int("value", opts.ChartWidth))
		return err
	}

	// The TUI owns the terminal, so it cannot share it with verbose logs.
	if opts.Verbose {
		if opts.TuiEnabled && !flags.Changed("no-tui") {
			logger.Debug("Verbose mode enabled, TUI disabled")
		}
		opts.TuiEnabled = false
	}

	logger.Debug("Final derived settings validated",
		slog.String("src", opts.SourcePath),
		slog.Bool("recursive", opts.Recursive),
		slog.String("dirFilter", opts.DirFilter),
		slog.String("imgExts", opts.ImageExtensions),
		slog.Int("concurrency", opts.Concurrency),
		slog.Duration("taskTimeout", opts.TaskTimeout),
		slog.String("outputFormat", string(opts.OutputFormat)),
		slog.Bool("tuiEnabledEffective", opts.TuiEnabled),
	)

	return nil
}

// --- END OF FINAL REVISED FILE internal/cli/config/config.go ---
