package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "biovalue",
		Short: "Evaluate biotech investment opportunities from the terminal",
		Long: `biovalue is a terminal workspace for scoring biotech companies.
Run it without arguments for the interactive UI, or use the companies
subcommands to script the tracked company collection.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.SetVersionTemplate(`{{printf "biovalue version %s\n" .Version}}`)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $BIOVALUE_CONFIG or ~/.config/biovalue/config.toml)")

	root.AddCommand(newCompaniesCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of biovalue",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biovalue version %s\n", version)
		},
	}
}
