package main

import (
	"os"

	"github.com/spf13/cobra"

	"fsintel/internal/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool facade over stdio, one JSON request per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		facade, err := openFacade(logger)
		if err != nil {
			return err
		}
		defer facade.Close()

		server := tool.NewServer(facade, os.Stdin, os.Stdout, logger)
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
