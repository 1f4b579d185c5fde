package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/scorer"
	"github.com/collabops/brief-cli/internal/subscription"
)

var (
	analyzeCreator string
	analyzeTier    string
	analyzeText    string
	analyzeFile    string
	analyzeBrief   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ingest a brief and run AI extraction",
	Long:  "Creates a brief from pasted text or an uploaded file and runs the extraction. With --brief, re-runs extraction for an existing brief whose previous run failed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var b *model.Brief
		switch {
		case analyzeBrief != "":
			if err := env.Service.Reanalyze(ctx, analyzeCreator, analyzeBrief, analyzeTier); err != nil {
				return err
			}
			if b, err = env.Service.Get(ctx, analyzeCreator, analyzeBrief, false); err != nil {
				return err
			}
		case analyzeFile != "":
			data, err := os.ReadFile(analyzeFile)
			if err != nil {
				return eris.Wrapf(err, "read %s", analyzeFile)
			}
			if b, err = env.Service.CreateFromFile(ctx, analyzeCreator, analyzeTier, analyzeFile, data); err != nil {
				return err
			}
		case analyzeText != "":
			if b, err = env.Service.CreateFromText(ctx, analyzeCreator, analyzeTier, analyzeText); err != nil {
				return err
			}
		default:
			return eris.New("one of --text, --file, or --brief is required")
		}

		// Plans without AI extraction stop at the stored draft.
		if err := subscription.NewGate(env.Store).CheckExtraction(analyzeTier); err != nil {
			zap.L().Info("brief stored without extraction",
				zap.String("brief_id", b.BriefID),
				zap.String("tier", analyzeTier),
			)
			return printBrief(b)
		}

		res, ok := <-env.Runner.Results()
		if !ok {
			return eris.New("extraction runner closed unexpectedly")
		}
		if res.Err != nil {
			zap.L().Warn("extraction did not complete",
				zap.String("brief_id", res.BriefID),
				zap.Error(res.Err),
			)
		}

		b, err = env.Service.Get(ctx, analyzeCreator, b.BriefID, false)
		if err != nil {
			return err
		}
		return printBrief(b)
	},
}

func printBrief(b *model.Brief) error {
	out := struct {
		*model.Brief
		CompletionPercentage int     `json:"completion_percentage"`
		EstimatedValue       float64 `json:"estimated_value"`
		ReadyForDeal         bool    `json:"ready_for_deal"`
	}{
		Brief:                b,
		CompletionPercentage: scorer.CompletionPercentage(b),
		EstimatedValue:       scorer.EstimatedValue(b),
		ReadyForDeal:         scorer.IsReadyForDeal(b),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCreator, "creator", "", "creator id (required)")
	analyzeCmd.Flags().StringVar(&analyzeTier, "tier", "pro", "subscription tier")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "brief text to analyze")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "brief document to analyze (.txt, .md, .xlsx, .pdf)")
	analyzeCmd.Flags().StringVar(&analyzeBrief, "brief", "", "existing brief id to re-analyze")
	_ = analyzeCmd.MarkFlagRequired("creator")
	rootCmd.AddCommand(analyzeCmd)
}
