package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/collabops/brief-cli/internal/model"
)

var (
	convertCreator  string
	convertBrand    string
	convertCampaign string
	convertPlatform string
	convertAmount   float64
	convertGST      bool
	convertTDS      bool
	convertDeadline string
)

var convertCmd = &cobra.Command{
	Use:   "convert <brief-id>",
	Short: "Convert a ready brief into a draft deal",
	Long:  "Converts a ready brief into a draft deal. Override flags switch the conversion from one-click to manual-edit.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		overrides, err := buildOverrides(cmd)
		if err != nil {
			return err
		}

		deal, err := env.Converter.Convert(ctx, convertCreator, args[0], overrides)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(deal)
	},
}

// buildOverrides assembles overrides from the flags that were actually set,
// so an untouched flag keeps the extracted value.
func buildOverrides(cmd *cobra.Command) (*model.ConversionOverrides, error) {
	ov := &model.ConversionOverrides{
		BrandName:    convertBrand,
		CampaignName: convertCampaign,
		Platform:     model.Platform(convertPlatform),
	}
	if cmd.Flags().Changed("amount") {
		ov.Amount = &convertAmount
	}
	if cmd.Flags().Changed("gst") {
		ov.GSTApplicable = &convertGST
	}
	if cmd.Flags().Changed("tds") {
		ov.TDSApplicable = &convertTDS
	}
	if convertDeadline != "" {
		t, err := time.Parse("2006-01-02", convertDeadline)
		if err != nil {
			return nil, err
		}
		ov.ResponseDeadline = &t
	}
	if ov.IsEmpty() {
		return nil, nil
	}
	return ov, nil
}

func init() {
	convertCmd.Flags().StringVar(&convertCreator, "creator", "", "creator id (required)")
	convertCmd.Flags().StringVar(&convertBrand, "brand", "", "override brand name")
	convertCmd.Flags().StringVar(&convertCampaign, "campaign", "", "override campaign name")
	convertCmd.Flags().StringVar(&convertPlatform, "platform", "", "override platform (instagram, youtube, linkedin, twitter)")
	convertCmd.Flags().Float64Var(&convertAmount, "amount", 0, "override deal amount")
	convertCmd.Flags().BoolVar(&convertGST, "gst", true, "override GST applicability")
	convertCmd.Flags().BoolVar(&convertTDS, "tds", false, "override TDS applicability")
	convertCmd.Flags().StringVar(&convertDeadline, "response-deadline", "", "override response deadline (YYYY-MM-DD)")
	_ = convertCmd.MarkFlagRequired("creator")
	rootCmd.AddCommand(convertCmd)
}
