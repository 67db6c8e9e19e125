package main

import (
	"fmt"

	"github.com/alnah/go-docx2pdf/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	f, rest, err := parseListFlags("config", args, env.Stderr, printConfigUsage)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: config takes no arguments, got %q", ErrUsage, rest)
	}

	cfg, err := loadConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeLayoutFlags(&f.layout, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
