package main

import (
	"flag"

	"github.com/Pietr00ass/OCR-SG/internal/config"
	"github.com/Pietr00ass/OCR-SG/internal/pipeline"
	"github.com/Pietr00ass/OCR-SG/internal/server"
)

// runServe starts the HTTP API.
func runServe(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.Addr, "listen address")
	workers := flags.Int("workers", cfg.Workers, "number of recognition workers")
	if err := flags.Parse(args); err != nil {
		return err
	}
	cfg.Workers = *workers

	runner, err := pipeline.NewRunner(cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return server.New(runner).ListenAndServe(*addr)
}
