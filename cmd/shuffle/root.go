package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/flier/shuffle/pkg/persistent"
	"github.com/flier/shuffle/pkg/shuffle"
	"github.com/flier/shuffle/pkg/xerrors"
)

// rootOptions gathers the open-time options shared by every subcommand,
// bound to the persistent flags through viper, so a flag that is not set
// falls back to its default. No environment variables or config file are
// read.
type rootOptions struct {
	storePath                   string
	bias                        float64
	newItemHandling             string
	removeOnDeserializationError bool
	keepUnrecognized            bool
}

func (o *rootOptions) handling() shuffle.NewItemHandling {
	switch o.newItemHandling {
	case "RecentlySelected":
		return shuffle.RecentlySelected
	case "Random":
		return shuffle.Random
	default:
		return shuffle.NeverSelected
	}
}

func (o *rootOptions) persistentOptions() persistent.Options[string] {
	opts := persistent.DefaultOptions[string]()
	opts.Bias = o.bias
	opts.NewItemHandling = o.handling()
	opts.RemoveOnDeserializationError = o.removeOnDeserializationError
	opts.KeepUnrecognized = o.keepUnrecognized

	return opts
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	v := viper.GetViper()

	logger, _ := zap.NewProduction()

	root := &cobra.Command{
		Use:   "shuffle",
		Short: "Draw and inspect items from a recency-biased shuffler store",
	}

	var flags *pflag.FlagSet = root.PersistentFlags()
	flags.StringVar(&opts.storePath, "store", "", "path to the badger-backed store (required)")
	flags.Float64Var(&opts.bias, "bias", 2.0, "selection bias toward older generations")
	flags.StringVar(&opts.newItemHandling, "new-item-handling", "NeverSelected",
		"NeverSelected, RecentlySelected, or Random")
	flags.BoolVar(&opts.removeOnDeserializationError, "remove-on-deserialization-error", false,
		"silently purge records that fail to decode")
	flags.BoolVar(&opts.keepUnrecognized, "keep-unrecognized", false,
		"keep store records not present in the supplied valid-items set")

	if err := v.BindPFlags(flags); err != nil {
		logger.Fatal("binding flags", zap.Error(err))
	}

	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		opts.storePath = v.GetString("store")
		opts.bias = v.GetFloat64("bias")
		opts.newItemHandling = v.GetString("new-item-handling")
		opts.removeOnDeserializationError = v.GetBool("remove-on-deserialization-error")
		opts.keepUnrecognized = v.GetBool("keep-unrecognized")

		if opts.storePath == "" {
			return fmt.Errorf("--store is required")
		}

		return nil
	}

	root.AddCommand(recoverLogicErrors(pickCmd(opts, logger)))
	root.AddCommand(recoverLogicErrors(dumpCmd(opts, logger)))
	root.AddCommand(recoverLogicErrors(dumpRawCmd(opts)))
	root.AddCommand(recoverLogicErrors(repairCmd(opts, logger)))

	return root
}

// recoverLogicErrors wraps cmd's RunE so a shuffle.LogicError panic
// (bad flag values, a misused store) surfaces as a normal cobra error
// instead of a crash. Any other recovered value is not this command's
// contract being violated and is re-panicked.
func recoverLogicErrors(cmd *cobra.Command) *cobra.Command {
	run := cmd.RunE

	cmd.RunE = func(c *cobra.Command, args []string) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if cause, ok := r.(error); ok {
				if le, ok := xerrors.AsA[shuffle.LogicError](cause); ok {
					err = fmt.Errorf("%s: %w", cmd.Name(), le)

					return
				}
			}

			panic(r)
		}()

		return run(c, args)
	}

	return cmd
}
