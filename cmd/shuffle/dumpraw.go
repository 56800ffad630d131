package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flier/shuffle/pkg/persistent/badgerstore"
)

func dumpRawCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump-raw",
		Short: "Print raw key/value bytes straight from the store, bypassing the codec",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store, err := badgerstore.Open(opts.storePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			defer store.Close()

			return store.Iterate(func(key, value []byte) error {
				fmt.Printf("%s\t%s\n", hex.EncodeToString(key), hex.EncodeToString(value))

				return nil
			})
		},
	}
}
