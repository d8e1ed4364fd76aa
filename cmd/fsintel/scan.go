package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fsintel/internal/tool"
)

var (
	scanSessionID   string
	scanMaxDepth    int
	scanHidden      bool
	scanHashes      bool
	scanHashLimitMB int64
)

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Scan a directory tree into a new analysis session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		facade, err := openFacade(logger)
		if err != nil {
			return err
		}
		defer facade.Close()

		overrides := &tool.ScanOverrides{}
		if cmd.Flags().Changed("max-depth") {
			overrides.MaxDepth = &scanMaxDepth
		}
		if cmd.Flags().Changed("include-hidden") {
			overrides.IncludeHidden = &scanHidden
		}
		if cmd.Flags().Changed("calculate-hashes") {
			overrides.CalculateHashes = &scanHashes
		}
		if cmd.Flags().Changed("hash-limit-mb") {
			overrides.HashSizeLimitMB = &scanHashLimitMB
		}

		res, err := facade.Scan(cmd.Context(), args[0], scanSessionID, overrides)
		if err != nil {
			return err
		}

		fmt.Printf("Scan completed. Session ID: %s\n", res.SessionID)
		fmt.Printf("Indexed %d files in %s", res.FilesIndexed, res.Duration.Round(time.Millisecond))
		if len(res.Issues) > 0 {
			fmt.Printf(" (%d issues recorded)", len(res.Issues))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanSessionID, "session-id", "", "Explicit session id (default: generated)")
	scanCmd.Flags().IntVar(&scanMaxDepth, "max-depth", 50, "Maximum directory depth to descend")
	scanCmd.Flags().BoolVar(&scanHidden, "include-hidden", true, "Include dot-prefixed files and directories")
	scanCmd.Flags().BoolVar(&scanHashes, "calculate-hashes", true, "Compute MD5 and SHA-256 for eligible files")
	scanCmd.Flags().Int64Var(&scanHashLimitMB, "hash-limit-mb", 100, "Skip hashing files at or above this size")
	rootCmd.AddCommand(scanCmd)
}
