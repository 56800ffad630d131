package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flier/shuffle/pkg/persistent"
	"github.com/flier/shuffle/pkg/persistent/badgerstore"
	"github.com/flier/shuffle/pkg/tree"
)

func dumpCmd(opts *rootOptions, _ *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every item and its generation, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			store, err := badgerstore.Open(opts.storePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			p := persistent.Open[string](store, persistent.StringCodec{}, tree.NewHasher[string](),
				nil, opts.persistentOptions())
			if p.IsErr() {
				return p.UnwrapErr()
			}

			defer p.Unwrap().Drop()

			records := p.Unwrap().Items()

			sort.Slice(records, func(i, j int) bool { return records[i].Generation < records[j].Generation })

			for _, r := range records {
				fmt.Printf("%s\t%d\n", r.Item, r.Generation)
			}

			return nil
		},
	}
}
