package main

import (
	"fmt"
	"os"

	"github.com/systmms/aws-secrets/cmd/aws-secrets/commands"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errors.Present(err))
		os.Exit(1)
	}
}

func run() error {
	secure.Init()
	defer secure.Purge()

	cfg := &config.Config{}
	rootCmd := commands.NewRootCommand(cfg, fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))
	return rootCmd.Execute()
}
