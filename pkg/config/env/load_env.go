package env

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from .env files. ENV_PATH, when set,
// replaces the default paths. Missing files are only an error in local mode
// (env "local" or empty). Variables already present in the environment win.
func LoadDotEnv(env string, defaultPaths ...string) error {
	paths := defaultPaths
	if p := os.Getenv("ENV_PATH"); p != "" {
		paths = []string{p}
	} else {
		slog.Info("ENV_PATH is not set, using default paths", "paths", defaultPaths)
	}

	var loaded []string
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil {
			loaded = append(loaded, p)
			continue
		}
		if errors.Is(err, fs.ErrNotExist) && env != "local" && env != "" {
			slog.Debug("Skipping .env ...", "path", p)
			continue
		}
		slog.Error("Failed to load environment variables", "path", p, "env", env, "error", err)
		return err
	}

	if len(loaded) > 0 {
		slog.Debug("Loaded .env files", "paths", loaded)
	}
	return nil
}
