// fabric-gen assembles a fabric description into a validated model and
// reports design rule findings.
//
// The pipeline:
//  1. The assembler parses the fabric csv, driving the bel, list, matrix
//     and switch matrix parsers per tile.
//  2. The fact builder flattens the model into relational tables.
//  3. The CUE validator enforces the data contract (crash on mismatch).
//  4. OPA evaluates the design rules against the tables.
//  5. Discovered per-tile config memory tables are cross-checked against
//     each tile's configuration bit total.
package main

import (
	"fmt"
	"os"

	"github.com/openfpga-tools/fabricgen/internal/config"
	"github.com/openfpga-tools/fabricgen/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "init":
		runInit()
	case "-h", "--help", "help":
		printUsage()
	case "-c", "--config":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		runGenWithConfig(os.Args[2], os.Args[3])
	default:
		runGen(cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: fabric-gen [command] [options] <path>

Commands:
  init              Create a fabricgen.json configuration file
  <path>            Assemble the fabric description at the given path
                    (a fabric csv or a directory containing one)

Options:
  -c, --config      Specify config file: fabric-gen -c config.json <path>
  -h, --help        Show this help message

Configuration:
  fabric-gen looks for configuration in:
    1. ./fabricgen.json
    2. ./.fabricgen.json
    3. ~/.config/fabricgen/config.json

  Run 'fabric-gen init' to create a default configuration file.`)
}

func runInit() {
	configPath := "fabricgen.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Fabric description location")
	fmt.Println("  - Config memory table discovery patterns")
	fmt.Println("  - Design rule severities")
}

func runGen(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	run(cfg, path)
}

func runGenWithConfig(configPath, path string) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
		os.Exit(1)
	}
	run(cfg, path)
}

func run(cfg *config.Config, path string) {
	report, err := pipeline.New(cfg).Run(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, f := range report.Findings {
		where := f.Tile
		if where == "" {
			where = "fabric"
		}
		fmt.Printf("%s: [%s] %s: %s\n", f.Severity, f.Rule, where, f.Message)
	}
	fmt.Printf("%d findings (%d errors, %d warnings, %d info)\n",
		report.Summary.TotalFindings, report.Summary.Errors,
		report.Summary.Warnings, report.Summary.Info)

	if report.Summary.Errors > 0 {
		os.Exit(1)
	}
}
