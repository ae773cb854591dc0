package piquouze

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dozm/piquouze/errorx"
)

const (
	EnvLogLevel  = "PIQUOUZE_LOG_LEVEL"
	EnvLogFormat = "PIQUOUZE_LOG_FORMAT"
)

// LoadOptions reads the env files (".env" by default, missing files are
// ignored) and builds Options from the process environment. An empty log
// level keeps the no-op logger.
func LoadOptions(envFiles ...string) (Options, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Non-fatal: env files are optional
		_ = godotenv.Load(f)
	}

	options := DefaultOptions()
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		return options, nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return options, errorx.NewArgumentError("invalid " + EnvLogLevel + ": " + level)
	}

	cfg := zap.NewProductionConfig()
	if os.Getenv(EnvLogFormat) == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return options, errors.Wrap(err, "building logger")
	}
	options.Logger = logger
	return options, nil
}

// RegisterEnv registers the variables of the env files as values. With a
// prefix, only PREFIX_NAME variables are kept and registered as "name";
// without one every variable is registered under its lower-cased key.
func (c *Container) RegisterEnv(prefix string, envFiles ...string) error {
	env, err := godotenv.Read(envFiles...)
	if err != nil {
		return errors.Wrap(err, "reading env files")
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			var ok bool
			if name, ok = strings.CutPrefix(k, prefix+"_"); !ok || name == "" {
				continue
			}
		}
		if err := c.RegisterValue(strings.ToLower(name), env[k]); err != nil {
			return err
		}
	}
	return nil
}
