package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	uavledger "github.com/kevin-atari/uav-mission-log-integrity"
)

func simulateCommand() *cobra.Command {
	var (
		flightID string
		source   string
		chunks   int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Upload a log file as cumulative snapshot versions, anchoring each step on-chain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			registry, err := openRegistry(ctx, cfg, log)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read source log: %w", err)
			}

			uploader := &uavledger.Uploader{Store: store, Registry: registry, Log: log}
			res, err := uploader.Run(ctx, flightID, data, chunks)
			if err != nil {
				return err
			}

			for _, step := range res.Steps {
				fmt.Printf("[%02d/%d] lines=%6d bytes=%8d version=%s tip=%s anchored=%v\n",
					step.SeqNo, len(res.Steps), step.Units, step.Bytes,
					step.VersionID, step.TipDigest, step.Anchored)
			}
			fmt.Printf("done: flight %s, %d versions uploaded, closed=%v\n",
				res.FlightID, len(res.Steps), res.Closed)
			return nil
		},
	}

	cmd.Flags().StringVar(&flightID, "flight-id", "", "flight identifier (e.g. flight-001)")
	cmd.Flags().StringVar(&source, "source", "logs/data.txt", "path to source log file")
	cmd.Flags().IntVar(&chunks, "chunks", 10, "number of cumulative uploads (versions) to create")
	_ = cmd.MarkFlagRequired("flight-id")
	return cmd
}
