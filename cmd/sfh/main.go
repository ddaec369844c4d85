package main

import (
	"os"

	"github.com/Dicklesworthstone/sfh/internal/cli"
	"github.com/Dicklesworthstone/sfh/internal/output"
)

func main() {
	if err := cli.Execute(); err != nil {
		_ = output.PrintError(os.Stdout, err, cli.IsJSONOutput())
		os.Exit(1)
	}
}
