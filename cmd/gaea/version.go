package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/gaea"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gaea",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gaea version %s\n", strings.TrimSpace(gaea.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
