package main

import (
	"fmt"
	"os"

	"github.com/onboardiq/onboardiq/internal/cli"
	"github.com/onboardiq/onboardiq/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "onboardiqd",
		Short: "OnboardIQ daemon and CLI",
		Long:  "OnboardIQ daemon for running the API server and managing the knowledge index",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.VectorizeCmd())
	rootCmd.AddCommand(admin.StatusCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
