package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/subscription"
)

var batchConcurrency int

// batchInput is the YAML file format for batch analysis.
type batchInput struct {
	Briefs []batchEntry `yaml:"briefs"`
}

type batchEntry struct {
	CreatorID string `yaml:"creator_id"`
	Tier      string `yaml:"tier"`
	Text      string `yaml:"text,omitempty"`
	File      string `yaml:"file,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file.yaml>",
	Short: "Ingest and analyze a batch of briefs from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		var input batchInput
		if err := yaml.Unmarshal(data, &input); err != nil {
			return eris.Wrap(err, "parse batch file")
		}
		if len(input.Briefs) == 0 {
			return eris.New("batch file lists no briefs")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var mu sync.Mutex
		var created []string
		enqueued := 0

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)
		for _, entry := range input.Briefs {
			g.Go(func() error {
				var b *model.Brief
				var err error
				switch {
				case entry.File != "":
					var fileData []byte
					if fileData, err = os.ReadFile(entry.File); err != nil {
						return eris.Wrapf(err, "read %s", entry.File)
					}
					b, err = env.Service.CreateFromFile(gctx, entry.CreatorID, entry.Tier, entry.File, fileData)
				default:
					b, err = env.Service.CreateFromText(gctx, entry.CreatorID, entry.Tier, entry.Text)
				}
				if err != nil {
					return eris.Wrapf(err, "create brief for %s", entry.CreatorID)
				}

				mu.Lock()
				created = append(created, b.BriefID)
				if subscription.PlanFor(entry.Tier).AIExtraction {
					enqueued++
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		succeeded, failed := 0, 0
		for i := 0; i < enqueued; i++ {
			res, ok := <-env.Runner.Results()
			if !ok {
				break
			}
			if res.Err != nil {
				failed++
				zap.L().Warn("batch extraction failed",
					zap.String("brief_id", res.BriefID),
					zap.Error(res.Err),
				)
				continue
			}
			succeeded++
		}

		fmt.Printf("created %d briefs, extraction: %d succeeded, %d failed\n",
			len(created), succeeded, failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "maximum concurrent brief ingestions")
	rootCmd.AddCommand(batchCmd)
}
