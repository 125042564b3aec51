package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/ezmatch/ezmatch/internal/cli"
	"github.com/ezmatch/ezmatch/internal/version"
)

func main() {
	rootCmd := cli.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "EZMATCH",
		Section: "1",
		Source:  "ezmatch " + version.Version,
		Manual:  "ezmatch manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
