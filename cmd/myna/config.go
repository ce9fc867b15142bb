package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aleksaelezovic/myna/internal/storage"
	"github.com/aleksaelezovic/myna/internal/workflow"
	"github.com/aleksaelezovic/myna/pkg/store"
)

const (
	configBaseName   = "myna"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "MYNA"

	storeFlagName        = "store"
	mappingFlagName      = "mapping"
	outputFlagName       = "output"
	formatFlagName       = "format"
	compactFlagName      = "compact"
	exportFormatFlagName = "export-format"
	baseIRIFlagName      = "base-iri"
	addrFlagName         = "addr"
	verboseFlagName      = "verbose"
	logFileFlagName      = "log-file"

	storePathKey      = "store.path"
	compactQNamesKey  = "rewrite.compact_qnames"
	nativePrefixesKey = "rdf.native_prefixes"
	baseIRIKey        = "rdf.base_iri"
	exportFormatKey   = "rdf.export_format"
	serverAddrKey     = "server.addr"
	previewFormatKey  = "preview.format"
	showFormatKey     = "runs.show_format"

	defaultStorePath      = "./myna_data"
	defaultCompactQNames  = true
	defaultNativePrefixes = false
	defaultExportFormat   = "text/turtle"
	defaultServerAddr     = "localhost:8080"
	defaultPreviewFormat  = "table"
	defaultShowFormat     = "json"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".myna.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	setConfigDefaults()

	// A missing config file is fine; defaults and env still apply.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("config not loaded", "file", configFileName, "error", err)
		}
	}
}

func setConfigDefaults() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(storePathKey, defaultStorePath)
	viper.SetDefault(compactQNamesKey, defaultCompactQNames)
	viper.SetDefault(nativePrefixesKey, defaultNativePrefixes)
	viper.SetDefault(baseIRIKey, workflow.DefaultBaseIRI)
	viper.SetDefault(exportFormatKey, defaultExportFormat)
	viper.SetDefault(serverAddrKey, defaultServerAddr)
	viper.SetDefault(previewFormatKey, defaultPreviewFormat)
	viper.SetDefault(showFormatKey, defaultShowFormat)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// numeric slog levels, e.g. -4 for debug
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the default slog logger at a rotating log file.
// verbose forces Debug, otherwise log.level applies.
func configureLogger(logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: verbose,
		Level:     logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// serviceConfig reads the workflow settings from viper
func serviceConfig() workflow.Config {
	return workflow.Config{
		BaseIRI:        viper.GetString(baseIRIKey),
		CompactQNames:  viper.GetBool(compactQNamesKey),
		NativePrefixes: viper.GetBool(nativePrefixesKey),
	}
}

// openService opens the run store at store.path. The returned close
// function releases the database.
func openService() (*workflow.Service, func() error, error) {
	logger := slog.Default()
	path := viper.GetString(storePathKey)

	s, err := storage.OpenBadgerStorage(path, storage.Options{Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("open run store %s: %w", path, err)
	}
	runs := store.NewRunStore(s)
	return workflow.New(runs, serviceConfig(), logger), runs.Close, nil
}
