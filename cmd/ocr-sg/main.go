package main

import (
	"fmt"
	"os"

	"github.com/Pietr00ass/OCR-SG/internal/config"
	"github.com/Pietr00ass/OCR-SG/internal/log"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("ocr-sg %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)

	var err error
	switch os.Args[1] {
	case "ocr":
		err = runOCR(cfg, os.Args[2:])
	case "serve":
		err = runServe(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ocr-sg - OCR pipeline for images and PDFs")
	fmt.Println()
	fmt.Println("Usage: ocr-sg <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  ocr <path>...    Recognize text in files or directories")
	fmt.Println("  serve            Run the HTTP API")
	fmt.Println("  version          Print version information")
	fmt.Println()
	fmt.Println("Run 'ocr-sg <command> --help' for command options.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  OCRSG_ENGINE, OCRSG_LANGUAGES, OCRSG_DPI, OCRSG_WORKERS,")
	fmt.Println("  OCRSG_PRE_* preprocessing flags, OCRSG_LOG_LEVEL=debug")
}
