package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/silk2mp3/internal/audio"
	"github.com/backmassage/silk2mp3/internal/check"
	"github.com/backmassage/silk2mp3/internal/codec/lame"
	"github.com/backmassage/silk2mp3/internal/codec/silk"
	"github.com/backmassage/silk2mp3/internal/config"
	"github.com/backmassage/silk2mp3/internal/display"
	"github.com/backmassage/silk2mp3/internal/logging"
	"github.com/backmassage/silk2mp3/internal/pipeline"
	"github.com/backmassage/silk2mp3/internal/transcode"
)

func newRootCommand() *cobra.Command {
	var flags *config.Flags

	rootCmd := &cobra.Command{
		Use:           "silk2mp3 [flags] <file.silk | directory>",
		Short:         "Convert SILK voice recordings to MP3",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.ShowVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "silk2mp3 %s (%s)\n", version, commit)
				return nil
			}

			// Bootstrap: the logger doesn't exist yet, so errors are returned
			// for main to print.
			cfg := config.DefaultConfig()
			if err := config.LoadFile(flags.ConfigPath, &cfg); err != nil {
				return err
			}
			flags.Merge(cmd.Flags(), &cfg, args)
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner(cmd.OutOrStdout())
			log.Info("=== silk2mp3 v%s (%s) ===", version, commit)
			if cfg.ConfigFile != "" {
				log.Debug("Config: %s", cfg.ConfigFile)
			}

			if cfg.CheckOnly {
				ref, err := silk.ReferenceStream()
				if err != nil {
					log.Error("%v", err)
					return errReported
				}
				if !check.RunCheck(&cfg, log, check.Probes{
					EncoderVersion:   lame.Version(),
					NewEncoder:       newLAMEEncoder,
					Decoder:          silk.NewDecoder(),
					Reference:        ref,
					ReferenceSeconds: silk.ReferenceSeconds,
				}) {
					return errReported
				}
				return nil
			}

			// Cancel on SIGINT/SIGTERM so the batch stops between files
			// without leaving partial output.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					log.Warn("Received interrupt, finishing current file...")
					cancel()
				case <-ctx.Done():
				}
			}()

			if _, err := pipeline.Run(ctx, &cfg, log, newUnit(&cfg, log)); err != nil {
				log.Error("%v", err)
				return errReported
			}
			return nil
		},
	}

	flags = config.BindFlags(rootCmd.Flags())
	return rootCmd
}

// newUnit wires the SILK decoder and LAME encoder into a transcode unit
// configured from cfg.
func newUnit(cfg *config.Config, log *logging.Logger) *transcode.Unit {
	u := transcode.NewUnit(silk.NewDecoder(), newLAMEEncoder, log)
	u.BitrateKbps = cfg.BitrateKbps
	u.Quality = cfg.Quality
	u.KeepWAV = cfg.KeepWAV
	if cfg.OddLength == config.OddLengthTruncate {
		u.OddLength = audio.OddLengthTruncate
	}
	return u
}

// newLAMEEncoder adapts lame.New to transcode.EncoderFactory. The explicit
// nil return keeps a failed *lame.Encoder from becoming a non-nil interface.
func newLAMEEncoder(s transcode.EncoderSettings) (transcode.Encoder, error) {
	enc, err := lame.New(lame.Config{
		Channels:    s.Channels,
		SampleRate:  s.SampleRate,
		BitrateKbps: s.BitrateKbps,
		Quality:     lame.Quality(s.Quality),
	})
	if err != nil {
		return nil, err
	}
	return enc, nil
}
