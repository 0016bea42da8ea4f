package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nestodo/nestodo/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "nestodo-configure",
		Short: "Administration tool for the nestodo API",
		Long:  "CLI tool for applying the database schema, bootstrapping accounts and checking backends",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewCreateUserCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
