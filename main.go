package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kzaag/cqlschema/cass"
	"github.com/kzaag/cqlschema/cmn"
	"github.com/kzaag/cqlschema/target"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newRootCmd(fs afero.Fs) *cobra.Command {
	args := target.NewArgs()

	cmd := &cobra.Command{
		Use:           "dp",
		Short:         "inspect cassandra schema and plan changes against local definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := args.Validate(); err != nil {
				return err
			}

			/*
				parse configuration file
			*/
			c, err := target.NewConfigFromPath(fs, args.ConfigPath, args)
			if err != nil {
				return err
			}

			level := c.Log.Level
			if args.Verbose && level == "" {
				level = "debug"
			}
			log, err := cmn.NewLogger(c.Log.Dev, level)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			return cass.TargetCtxNew(log, fs).ExecConfig(cmd.Context(), c, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&args.ConfigPath, "config", "c", "", "config path, file or directory.")
	f.BoolVarP(&args.Verbose, "verbose", "v", false, "verbosity - report progress as program runs")
	f.BoolVarP(&args.Raw, "raw", "r", false, "raw output - disable text formatting")
	f.StringVar(&args.Format, "format", target.FormatYAML, "schema output format, yaml or json")
	f.Var(&args.Demand, "demand", "specifies on-demand targets")
	f.StringToStringVar(&args.Set, "set", nil, "override config define, name=value")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(afero.NewOsFs())
	raw := false
	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		raw, _ = cmd.Flags().GetBool("raw")
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		cmn.CndPrintError(raw, err)
		stop()
		os.Exit(1)
	}
}
