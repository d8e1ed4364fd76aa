package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded scan sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		facade, err := openFacade(logger)
		if err != nil {
			return err
		}
		defer facade.Close()

		sessions, err := facade.Sessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s  %-9s  %s  %s\n",
				s.SessionID,
				s.Status,
				s.StartTime.UTC().Format(time.RFC3339),
				s.RootPath)
			if s.EndTime != nil {
				fmt.Printf("  finished %s\n", humanize.Time(*s.EndTime))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
