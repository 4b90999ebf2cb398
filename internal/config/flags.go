package config

// This file binds CLI flags to a staging Config. Only flags the user actually
// set are merged over the defaults and config file, so an unset flag never
// clobbers a value from config.toml.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds the raw flag values between parsing and [Flags.Merge].
type Flags struct {
	staged Config

	ConfigPath  string
	ShowVersion bool

	forceColor  bool
	noColor     bool
	truncateOdd bool
}

// BindFlags registers every option on fs and returns the staging holder.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{staged: DefaultConfig()}
	c := &f.staged

	// Conversion.
	fs.VarP(&sampleRateValue{&c.SampleRate}, "sample-rate", "r", "Sample rate: 8000 | 16000 | 24000 | 32000 | 44100 | 48000")
	fs.StringVarP(&c.OutputPath, "output", "o", "", "Output file (single-file input only)")
	fs.BoolVar(&c.KeepWAV, "keep-wav", false, "Also write the decoded PCM as a WAV next to each MP3")
	fs.BoolVar(&f.truncateOdd, "truncate-odd", false, "Drop a trailing odd PCM byte with a warning instead of failing")

	// Behavior.
	fs.BoolVarP(&c.DryRun, "dry-run", "d", false, "Preview only; do not decode or write")
	fs.BoolVar(&c.NoLock, "no-lock", false, "Do not take the per-directory run lock")

	// Display.
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&c.LogFile, "log", "l", "", "Append logs to file")

	// Utility.
	fs.BoolVarP(&c.CheckOnly, "check", "c", false, "Run encoder/decoder diagnostics and exit")
	fs.StringVar(&f.ConfigPath, "config", "", "Configuration file path (default ~/.config/silk2mp3/config.toml)")
	fs.BoolVarP(&f.ShowVersion, "version", "V", false, "Print version and exit")

	return f
}

// Merge copies every flag the user set on fs into cfg, then applies the
// positional input path.
func (f *Flags) Merge(fs *pflag.FlagSet, cfg *Config, args []string) {
	s := &f.staged
	if fs.Changed("sample-rate") {
		cfg.SampleRate = s.SampleRate
	}
	if fs.Changed("output") {
		cfg.OutputPath = s.OutputPath
	}
	if fs.Changed("keep-wav") {
		cfg.KeepWAV = s.KeepWAV
	}
	if fs.Changed("truncate-odd") {
		if f.truncateOdd {
			cfg.OddLength = OddLengthTruncate
		} else {
			cfg.OddLength = OddLengthFail
		}
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = s.DryRun
	}
	if fs.Changed("no-lock") {
		cfg.NoLock = s.NoLock
	}
	if fs.Changed("verbose") {
		cfg.Verbose = s.Verbose
	}
	if fs.Changed("log") {
		cfg.LogFile = s.LogFile
	}
	if fs.Changed("check") {
		cfg.CheckOnly = s.CheckOnly
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}
}

// sampleRateValue adapts SampleRate to pflag.Value so an unsupported rate is
// rejected while arguments are parsed, before any file is touched.
type sampleRateValue struct{ p *SampleRate }

func (v *sampleRateValue) String() string {
	if v.p == nil {
		return ""
	}
	return v.p.String()
}

func (v *sampleRateValue) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !SampleRate(n).Valid() {
		return fmt.Errorf("invalid sample rate %q (use 8000, 16000, 24000, 32000, 44100 or 48000)", s)
	}
	*v.p = SampleRate(n)
	return nil
}

func (v *sampleRateValue) Type() string { return "rate" }
