package assessment

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

const (
	DefaultMaxAssessmentsPerQuery = 50
	DefaultDocServerURLPattern    = "http://example.com/document_server.php?docid=%s"
)

type Config struct {
	// MaxAssessmentsPerQuery caps the number of comparisons in one assignment.
	MaxAssessmentsPerQuery int
	// MaxAssessmentsPerDoc caps the comparisons a single document takes part in.
	// Non-positive disables the cap.
	MaxAssessmentsPerDoc int
	AssumeTransitivity   bool
	DocServerURLPattern  string
}

func DefaultConfig() Config {
	return Config{
		MaxAssessmentsPerQuery: DefaultMaxAssessmentsPerQuery,
		DocServerURLPattern:    DefaultDocServerURLPattern,
	}
}

// LoadConfig reads the strategy options from the environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("MAX_ASSESSMENTS_PER_QUERY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_ASSESSMENTS_PER_QUERY %q: %w", v, err)
		}
		if n <= 0 {
			slog.Warn("MAX_ASSESSMENTS_PER_QUERY is not positive, no assessments will be scheduled", "value", n)
		}
		cfg.MaxAssessmentsPerQuery = n
	}

	if v := os.Getenv("MAX_ASSESSMENTS_PER_DOC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_ASSESSMENTS_PER_DOC %q: %w", v, err)
		}
		cfg.MaxAssessmentsPerDoc = n
	}

	if v := os.Getenv("ASSUME_TRANSITIVITY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ASSUME_TRANSITIVITY %q: %w", v, err)
		}
		cfg.AssumeTransitivity = b
	}

	if v := os.Getenv("DOCSERVER_URL_PATTERN"); v != "" {
		cfg.DocServerURLPattern = v
	}

	return &cfg, nil
}
