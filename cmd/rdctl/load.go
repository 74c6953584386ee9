package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/app"
	datasetuc "github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/dataset"
)

func newLoadCmd() *cobra.Command {
	var (
		file      string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a restaurant dataset into the configured store",
		Long: `Read a JSON array of restaurant records, validate each one and write the
valid records to the configured store in batches. Invalid records are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := app.NewDataset(store, logger)
			if batchSize > 0 {
				svc = svc.WithBatchSize(batchSize)
			}

			start := time.Now()
			report, err := svc.LoadFile(ctx, file)
			if err != nil {
				return err
			}
			logger.Debug("load finished", zap.Duration("took", time.Since(start)))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d restaurants into %s in %v\n",
				report.Loaded, cfg.Store.Driver, time.Since(start).Round(time.Millisecond))
			for _, rej := range report.Rejected {
				fmt.Fprintf(out, "  rejected #%d (id %d): %v\n", rej.Index, rej.ID, rej.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON dataset file")
	cmd.Flags().IntVarP(&batchSize, "batch", "b", datasetuc.DefaultBatchSize, "Records per store write")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
