// The effects command generates contextual effect constraints for every
// function of the given Go packages.
//
//	effects run ./...
//	effects check effects.log
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "effects",
	Short: "Contextual effect constraints for Go functions",
	Long: `effects numbers the basic blocks of every function, computes the blocks
that may run before and after each of them, and writes the resulting
constraints to a log.

Commands:
  run         Analyse packages and write the constraint log
  check       Parse a constraint log and verify its structure`,
	SilenceUsage: true,
	Version:      version,
}

func init() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
