package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "pimpybot",
		Short: "Telegram front-end for via pimpy tasks",
		Long:  `pimpybot lets via members list, create and update their pimpy tasks from Telegram.`,
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newValidateCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pimpybot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pimpybot v%s\n", version)
		},
	}
}
