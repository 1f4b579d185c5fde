package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var showCreator string

var showCmd = &cobra.Command{
	Use:   "show <brief-id>",
	Short: "Show a brief with its extraction, scores, and clarifications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := st.GetBrief(ctx, showCreator, args[0])
		if err != nil {
			return eris.Wrapf(err, "show %s", args[0])
		}
		return printBrief(b)
	},
}

func init() {
	showCmd.Flags().StringVar(&showCreator, "creator", "", "creator id (required)")
	_ = showCmd.MarkFlagRequired("creator")
	rootCmd.AddCommand(showCmd)
}
