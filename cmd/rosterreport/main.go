package main

import (
	"os"

	"github.com/k12ops/rosterreport/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
