package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "seed":
		args := os.Args[2:]
		prune := len(args) > 0 && args[0] == "--prune"
		if prune {
			args = args[1:]
		}
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: spacetraveling seed [--prune] <file.json>")
			os.Exit(1)
		}
		if err := runSeed(args[0], prune); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("spacetraveling %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`spacetraveling - A blog front end for headless content, built with Go, Echo, and templ

Usage:
  spacetraveling <command> [arguments]

Commands:
  serve          Start the web server
  seed <file>    Import posts from a JSON file into the SQLite content store
                 (--prune also deletes stored posts the file no longer lists)
  version        Print the spacetraveling version
  help           Show this help message

Configuration is read from the environment and an optional .env file.

Examples:
  CONTENT_SOURCE=prismic PRISMIC_ENDPOINT=https://repo.cdn.prismic.io/api/v2 spacetraveling serve
  spacetraveling seed data/posts.json`)
}
