package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flier/shuffle/pkg/persistent"
	"github.com/flier/shuffle/pkg/persistent/badgerstore"
	"github.com/flier/shuffle/pkg/tree"
)

func repairCmd(opts *rootOptions, logger *zap.Logger) *cobra.Command {
	var validItemsPath string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Purge undecodable or unrecognized records, then compact",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			f, err := os.Open(validItemsPath)
			if err != nil {
				return fmt.Errorf("opening valid-items file: %w", err)
			}
			defer f.Close()

			items, err := readLines(f)
			if err != nil {
				return fmt.Errorf("reading valid-items file: %w", err)
			}

			store, err := badgerstore.Open(opts.storePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			repairOpts := opts.persistentOptions()
			repairOpts.RemoveOnDeserializationError = true
			repairOpts.KeepUnrecognized = false

			p := persistent.Open[string](store, persistent.StringCodec{}, tree.NewHasher[string](),
				items, repairOpts)
			if p.IsErr() {
				return p.UnwrapErr()
			}

			defer p.Unwrap().Drop()

			if r := p.Unwrap().Compact(); r.IsErr() {
				return r.UnwrapErr()
			}

			logger.Info("repair complete", zap.Int("size", p.Unwrap().Size()))

			return nil
		},
	}

	cmd.Flags().StringVar(&validItemsPath, "valid-items", "", "path to a newline-delimited valid-items file (required)")
	_ = cmd.MarkFlagRequired("valid-items")

	return cmd
}
