package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/scorer"
	"github.com/collabops/brief-cli/internal/store"
)

var (
	listCreator        string
	listStatus         string
	listIncludeDeleted bool
	listLimit          int
	listOffset         int
)

var briefsCmd = &cobra.Command{
	Use:   "briefs",
	Short: "List a creator's briefs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		list, err := st.ListBriefs(ctx, listCreator, store.BriefFilter{
			Status:         model.BriefStatus(listStatus),
			IncludeDeleted: listIncludeDeleted,
			Limit:          listLimit,
			Offset:         listOffset,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BRIEF ID\tSTATUS\tEXTRACTION\tBRAND\tCOMPLETE\tVALUE\tCREATED")
		for i := range list {
			b := &list[i]
			brand := b.AIExtraction.BrandInfo.Name
			if brand == "" {
				brand = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%.0f\t%s\n",
				b.BriefID, b.Status, b.AIExtraction.Status, brand,
				scorer.CompletionPercentage(b), scorer.EstimatedValue(b),
				b.CreatedAt.Format("2006-01-02"),
			)
		}
		return w.Flush()
	},
}

func init() {
	briefsCmd.Flags().StringVar(&listCreator, "creator", "", "creator id (required)")
	briefsCmd.Flags().StringVar(&listStatus, "status", "", "filter by brief status")
	briefsCmd.Flags().BoolVar(&listIncludeDeleted, "include-deleted", false, "include soft-deleted briefs")
	briefsCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum briefs to list")
	briefsCmd.Flags().IntVar(&listOffset, "offset", 0, "listing offset")
	_ = briefsCmd.MarkFlagRequired("creator")
	rootCmd.AddCommand(briefsCmd)
}
