package main

import (
	"fmt"
	"os"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if msg := cli.Message(err); msg != "" {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}
		os.Exit(cli.ExitCode(err))
	}
}
