package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var querySessionID string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a recorded session",
}

var querySQLCmd = &cobra.Command{
	Use:   "sql <statement> [param...]",
	Short: "Run a read-only SQL statement against the session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		facade, err := openFacade(logger)
		if err != nil {
			return err
		}
		defer facade.Close()

		params := make([]interface{}, 0, len(args)-1)
		for _, p := range args[1:] {
			params = append(params, p)
		}
		res, err := facade.Engine().ExecuteSQL(querySessionID, args[0], params)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var queryFnCmd = &cobra.Command{
	Use:   "fn <function> [arg...]",
	Short: "Run a named query such as get_largest_files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		facade, err := openFacade(logger)
		if err != nil {
			return err
		}
		defer facade.Close()

		fnArgs := make([]interface{}, 0, len(args)-1)
		for _, a := range args[1:] {
			fnArgs = append(fnArgs, a)
		}
		res, err := facade.Engine().CallFunction(querySessionID, args[0], fnArgs)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var queryAskCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Route a plain-language request to a named query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		facade, err := openFacade(logger)
		if err != nil {
			return err
		}
		defer facade.Close()

		routed, err := facade.Engine().Natural(querySessionID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "intent: %s\n", routed.Intent)
		return printJSON(routed.Result)
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	queryCmd.PersistentFlags().StringVar(&querySessionID, "session-id", "", "Session to query (required)")
	queryCmd.AddCommand(querySQLCmd, queryFnCmd, queryAskCmd)
	rootCmd.AddCommand(queryCmd)
}
