package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flier/shuffle/pkg/persistent"
	"github.com/flier/shuffle/pkg/persistent/badgerstore"
	"github.com/flier/shuffle/pkg/tree"
)

func pickCmd(opts *rootOptions, logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "pick N",
		Short: "Draw N items, preferring ones not recently picked",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parsing N: %w", err)
			}

			items, err := readLines(os.Stdin)
			if err != nil {
				return err
			}

			store, err := badgerstore.Open(opts.storePath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}

			p := persistent.Open[string](store, persistent.StringCodec{}, tree.NewHasher[string](),
				items, opts.persistentOptions())
			if p.IsErr() {
				return p.UnwrapErr()
			}

			defer p.Unwrap().Drop()

			drawn := p.Unwrap().TryUniqueN(n)
			if drawn.IsErr() {
				return drawn.UnwrapErr()
			}

			picked := drawn.Unwrap()
			if picked.IsNone() {
				logger.Info("store is empty, nothing to pick")

				return nil
			}

			for _, item := range picked.Unwrap() {
				fmt.Println(item)
			}

			return nil
		},
	}
}

func readLines(f *os.File) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}

	return lines, scanner.Err()
}
