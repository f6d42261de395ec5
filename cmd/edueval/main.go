package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string
	var root = &cobra.Command{
		Use:          "edueval",
		Short:        "Generate multiple-choice evaluations from course documents and run them",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml, json or toml)")

	root.AddCommand(serveCMD(&cfgPath), generateCMD(), exportCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
