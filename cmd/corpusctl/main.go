package main

import (
	"os"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
