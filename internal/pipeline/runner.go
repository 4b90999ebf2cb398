package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/silk2mp3/internal/config"
	"github.com/backmassage/silk2mp3/internal/display"
	"github.com/backmassage/silk2mp3/internal/logging"
	"github.com/backmassage/silk2mp3/internal/naming"
	"github.com/backmassage/silk2mp3/internal/transcode"
)

// Fatal input errors. Run returns these before any conversion starts.
var (
	ErrInputNotFound    = errors.New("input path does not exist")
	ErrNotSource        = errors.New("input file is not a .silk file")
	ErrUnsupportedEntry = errors.New("input path is neither a regular file nor a directory")
	ErrOutputForDir     = errors.New("--output can only be used with a single input file")
	ErrLocked           = errors.New("another run is already processing this path")
)

// Converter performs one conversion. *transcode.Unit implements it.
type Converter interface {
	Transcode(ctx context.Context, req transcode.Request) (transcode.Result, error)
}

// Run is the top-level batch entry point. A single file is converted and its
// error, if any, is returned. A directory is walked and every .silk file under
// it converted in sorted order; per-file errors are logged and counted and Run
// still returns nil. Cancelling ctx stops the batch between files.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, conv Converter) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString()}
	root := cfg.InputPath

	fi, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, fmt.Errorf("%w: %s", ErrInputNotFound, root)
		}
		return stats, fmt.Errorf("stat %s: %w", root, err)
	}

	switch {
	case fi.Mode().IsRegular():
		if !naming.IsSource(root) {
			return stats, fmt.Errorf("%w: %s", ErrNotSource, root)
		}
	case fi.IsDir():
		if cfg.OutputPath != "" {
			return stats, ErrOutputForDir
		}
	default:
		return stats, fmt.Errorf("%w: %s", ErrUnsupportedEntry, root)
	}

	if !cfg.NoLock && !cfg.DryRun {
		lock, err := acquireLock(root)
		if err != nil {
			return stats, err
		}
		defer lock.Unlock()
	}

	if fi.Mode().IsRegular() {
		return runFile(ctx, cfg, log, conv, &stats)
	}
	return runDir(ctx, cfg, log, conv, &stats)
}

func runFile(ctx context.Context, cfg *config.Config, log *logging.Logger, conv Converter, stats *RunStats) (RunStats, error) {
	stats.Total = 1
	stats.Current = 1
	logBatchHeader(cfg, log, stats)

	if err := processFile(ctx, cfg, log, conv, cfg.InputPath, cfg.OutputPath, stats); err != nil {
		stats.Failed++
		return *stats, err
	}
	return *stats, nil
}

func runDir(ctx context.Context, cfg *config.Config, log *logging.Logger, conv Converter, stats *RunStats) (RunStats, error) {
	files, err := Discover(cfg.InputPath)
	if err != nil {
		return *stats, fmt.Errorf("walk %s: %w", cfg.InputPath, err)
	}

	stats.Total = len(files)
	logBatchHeader(cfg, log, stats)

	for i, path := range files {
		if ctx.Err() != nil {
			log.Warn("Interrupted after %d of %d files", i, stats.Total)
			logSummary(cfg, log, stats)
			return *stats, ctx.Err()
		}
		stats.Current = i + 1

		if err := processFile(ctx, cfg, log, conv, path, "", stats); err != nil {
			log.Error("Error converting %s: %v", path, err)
			stats.Failed++
		}
	}

	logSummary(cfg, log, stats)
	return *stats, nil
}

// processFile converts one file and folds its result into stats. Failures
// are returned uncounted; the caller decides whether they are fatal.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	conv Converter,
	path, output string,
	stats *RunStats,
) error {
	log.Info("[%d/%d] %s", stats.Current, stats.Total, filepath.Base(path))

	if cfg.DryRun {
		if output == "" {
			output = naming.OutputPath(path)
		}
		if naming.OutputExists(output) {
			log.Warn("Skip (exists): %s", output)
			stats.Skipped++
			return nil
		}
		log.Success("[DRY] Would convert -> %s", output)
		stats.Converted++
		return nil
	}

	res, err := conv.Transcode(ctx, transcode.Request{
		InputPath:  path,
		OutputPath: output,
		SampleRate: int(cfg.SampleRate),
	})
	if err != nil {
		return err
	}
	if res.Skipped {
		stats.Skipped++
		return nil
	}

	stats.Converted++
	stats.TotalInputBytes += res.InputBytes
	stats.TotalOutputBytes += res.OutputBytes
	log.Debug("  %s -> %s (%s of input) in %s",
		display.FormatBytes(res.InputBytes),
		display.FormatBytes(res.OutputBytes),
		display.FormatRatio(res.InputBytes, res.OutputBytes),
		display.FormatElapsed(res.Elapsed))
	return nil
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Run %s", stats.RunID)
	log.Info("Input: %s (%d file(s))", cfg.InputPath, stats.Total)
	log.Info("Sample rate: %d Hz, MP3: mono %d kbps CBR, quality %d", int(cfg.SampleRate), cfg.BitrateKbps, cfg.Quality)
	if cfg.OddLength == config.OddLengthTruncate {
		log.Info("Odd-length PCM: drop trailing byte")
	}
	if cfg.KeepWAV {
		log.Info("WAV sidecars: enabled")
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Done: %d converted, %d skipped, %d failed", stats.Converted, stats.Skipped, stats.Failed)

	rows := []display.SummaryRow{
		{Label: "Run", Value: stats.RunID},
		{Label: "Files found", Value: strconv.Itoa(stats.Total)},
		{Label: "Processed", Value: strconv.Itoa(stats.Current)},
		{Label: "Converted", Value: strconv.Itoa(stats.Converted)},
		{Label: "Skipped", Value: strconv.Itoa(stats.Skipped)},
		{Label: "Failed", Value: strconv.Itoa(stats.Failed)},
	}
	if cfg.DryRun {
		rows = append(rows, display.SummaryRow{Label: "Output size", Value: "n/a (dry run)"})
	} else {
		rows = append(rows,
			display.SummaryRow{Label: "SILK input", Value: display.FormatBytes(stats.TotalInputBytes)},
			display.SummaryRow{Label: "MP3 output", Value: display.FormatBytes(stats.TotalOutputBytes)},
			display.SummaryRow{Label: "Growth", Value: display.FormatBytes(stats.Growth())},
			display.SummaryRow{Label: "Output/input", Value: display.FormatRatio(stats.TotalInputBytes, stats.TotalOutputBytes)},
		)
	}

	for _, line := range strings.Split(display.RenderSummary("silk2mp3 "+time.Now().Format("2006-01-02 15:04"), rows), "\n") {
		log.Info("%s", line)
	}
}
