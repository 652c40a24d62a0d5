package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

type cliConfig struct {
	Mode      string
	PoolPath  string
	Output    string
	PgConnStr string
}

func parseFlags() cliConfig {
	cfg := cliConfig{}

	flag.StringVar(&cfg.Mode, "mode", "import", "Run mode: import or export")
	flag.StringVar(&cfg.PoolPath, "pool", "", "Path to pool YAML (for import mode)")
	flag.StringVar(&cfg.Output, "output", "", "Output path for the judgment YAML (for export mode)")
	flag.StringVar(&cfg.PgConnStr, "pg", os.Getenv("PG_CONNECTION_STRING"), "PostgreSQL connection string")

	flag.Parse()
	return cfg
}

func (c cliConfig) validate() error {
	if c.PgConnStr == "" {
		return errors.New("a PostgreSQL connection string is required, use --pg or PG_CONNECTION_STRING")
	}
	switch c.Mode {
	case "import":
		if c.PoolPath == "" {
			return errors.New("import mode requires --pool")
		}
	case "export":
		if c.Output == "" {
			return errors.New("export mode requires --output")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
