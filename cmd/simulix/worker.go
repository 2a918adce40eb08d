package main

import (
	"github.com/YuminosukeSato/simulix/worker"
	"github.com/spf13/cobra"
)

func (a *app) workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve CALCULATE_TRADEOFF requests as newline-delimited JSON on stdin/stdout",
		Long: `Reads one JSON request per line, for example

  {"id":"1","type":"CALCULATE_TRADEOFF","params":{"samples":30,"noise":0.3}}

and writes exactly one TRADEOFF_COMPLETE or TRADEOFF_ERROR line per request.
A newer request supersedes the one still running. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wk := worker.New()
			defer wk.Close()
			return worker.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), wk)
		},
	}
}
