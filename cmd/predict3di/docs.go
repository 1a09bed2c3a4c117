package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/pranavathiyani/predict3Di/cmd/util"
)

var docsCmd = &cobra.Command{
	Use:    "docs dir",
	Short:  "Write markdown documentation for every command",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		util.AssertDir(args[0])
		rootCmd.DisableAutoGenTag = true
		return doc.GenMarkdownTree(rootCmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
