package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	uavledger "github.com/kevin-atari/uav-mission-log-integrity"
)

func verifyCommand() *cobra.Command {
	var flightID string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Reconcile a flight's stored snapshots against its on-chain checkpoints",
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

			verifier := uavledger.NewVerifier(store, registry, log)
			verdict, rows := verifier.VerifyFlight(ctx, flightID)

			if verdict.Error != "" {
				fmt.Printf("flight %s: %s\n", verdict.FlightID, verdict.Error)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tVERSION\tCOMPUTED\tONCHAIN\tSTATUS")
			for _, row := range rows {
				computed, onchain := "-", "-"
				if row.ComputedDigest != nil {
					computed = row.ComputedDigest.Hex()
				}
				if row.OnchainDigest != nil {
					onchain = row.OnchainDigest.Hex()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					row.SeqNo, row.VersionID, computed, onchain, row.Status)
			}
			w.Flush()

			fmt.Printf("\nflight %s: snapshots=%d checkpoints=%d matched=%d tampered=%v",
				verdict.FlightID, verdict.SnapshotCount, verdict.CheckpointCount,
				verdict.MatchedCount, verdict.Tampered)
			if verdict.FirstBadSeq != 0 {
				fmt.Printf(" first_bad_seq=%d", verdict.FirstBadSeq)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&flightID, "flight-id", "", "flight identifier to verify")
	_ = cmd.MarkFlagRequired("flight-id")
	return cmd
}
