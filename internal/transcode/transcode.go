// Package transcode converts one SILK file to one MP3 file.
//
// A conversion is read → decode → adapt to samples → encode → flush → write.
// Each step maps to one [Kind]; the first failure ends the conversion and
// nothing is written. The output file is created only after all encoded
// bytes are in memory.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/silk2mp3/internal/audio"
	"github.com/backmassage/silk2mp3/internal/naming"
)

// Fixed encoder configuration.
const (
	Channels           = 1
	DefaultBitrateKbps = 128
	DefaultQuality     = 5 // LAME "good"
)

// Request describes one conversion.
type Request struct {
	InputPath  string
	OutputPath string // empty: naming.OutputPath(InputPath)
	SampleRate int
}

// Result reports what a conversion did.
type Result struct {
	OutputPath   string
	Skipped      bool
	InputBytes   int64
	PCMBytes     int
	Samples      int
	EncodedBytes int // main encode output
	FlushedBytes int // flush output appended after it
	OutputBytes  int64
	Elapsed      time.Duration
}

// Unit performs conversions. A zero Unit is not usable; Decoder and
// NewEncoder are required.
type Unit struct {
	Decoder    Decoder
	NewEncoder EncoderFactory
	Log        Logger

	OddLength   audio.OddLengthPolicy
	BitrateKbps int  // 0: DefaultBitrateKbps
	Quality     int  // 0 is LAME's best; set DefaultQuality explicitly
	KeepWAV     bool // also write decoded PCM as <output>.wav
}

// NewUnit returns a Unit with the default bitrate and quality tiers.
func NewUnit(dec Decoder, newEncoder EncoderFactory, log Logger) *Unit {
	return &Unit{
		Decoder:     dec,
		NewEncoder:  newEncoder,
		Log:         log,
		OddLength:   audio.OddLengthFail,
		BitrateKbps: DefaultBitrateKbps,
		Quality:     DefaultQuality,
	}
}

// Transcode converts req.InputPath. An existing output is a successful skip
// and the input is not read. Errors are *Error values annotated with the
// input path, except a cancelled ctx, which is returned as-is before any work.
func (u *Unit) Transcode(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	out := req.OutputPath
	if out == "" {
		out = naming.OutputPath(req.InputPath)
	}
	res := Result{OutputPath: out}
	start := time.Now()

	// 1. Skip check.
	if naming.OutputExists(out) {
		u.Log.Warn("Skip (exists): %s", out)
		res.Skipped = true
		return res, nil
	}

	// 2. Read.
	u.Log.Info("Reading: %s", req.InputPath)
	input, err := os.ReadFile(req.InputPath)
	if err != nil {
		return res, fail(KindInputRead, req.InputPath, err)
	}
	res.InputBytes = int64(len(input))

	// 3. Decode.
	u.Log.Info("Decoding SILK at %d Hz", req.SampleRate)
	pcm, err := u.Decoder.Decode(input, req.SampleRate)
	if err != nil {
		return res, fail(KindDecode, req.InputPath, err)
	}
	res.PCMBytes = len(pcm)

	// 4. Adapt.
	samples, dropped, err := audio.ToSamples(pcm, u.OddLength)
	if err != nil {
		return res, fail(KindDecode, req.InputPath, err)
	}
	if dropped > 0 {
		u.Log.Warn("Decoded PCM has %d trailing byte(s) past the last full sample; dropped", dropped)
	}
	res.Samples = len(samples)
	u.Log.Debug("Decoded %d bytes -> %d samples (%.2fs)", len(pcm), len(samples), float64(len(samples))/float64(req.SampleRate))

	// 5. Configure.
	u.Log.Info("Encoding MP3: %s", out)
	enc, err := u.NewEncoder(EncoderSettings{
		Channels:    Channels,
		SampleRate:  req.SampleRate,
		BitrateKbps: u.bitrate(),
		Quality:     u.Quality,
	})
	if err != nil {
		return res, fail(KindEncoderConfig, req.InputPath, err)
	}
	defer enc.Close()

	// 6. Encode into reserved capacity.
	buf := audio.NewBuffer(enc.MaxEncodedSize(len(samples)))
	n, err := enc.Encode(samples, buf.Spare())
	if err == nil {
		err = buf.Commit(n)
	}
	if err != nil {
		return res, fail(KindEncode, req.InputPath, err)
	}
	res.EncodedBytes = n

	// 7. Flush, appended directly after the encoded frames.
	n, err = enc.Flush(buf.Spare())
	if err == nil {
		err = buf.Commit(n)
	}
	if err != nil {
		return res, fail(KindFlush, req.InputPath, err)
	}
	res.FlushedBytes = n

	// 8. Write.
	if err := writeOutput(out, buf.Bytes()); err != nil {
		return res, fail(KindOutputWrite, req.InputPath, err)
	}
	res.OutputBytes = int64(buf.Len())
	res.Elapsed = time.Since(start)

	if u.KeepWAV {
		u.writeSidecar(out, samples, req.SampleRate)
	}

	u.Log.Success("Converted %s -> %s", filepath.Base(req.InputPath), filepath.Base(out))
	return res, nil
}

func (u *Unit) bitrate() int {
	if u.BitrateKbps > 0 {
		return u.BitrateKbps
	}
	return DefaultBitrateKbps
}

func (u *Unit) writeSidecar(out string, samples []int16, rate int) {
	path := naming.SidecarPath(out, naming.WAVExt)
	if naming.OutputExists(path) {
		u.Log.Debug("WAV exists, not rewriting: %s", path)
		return
	}
	if err := audio.WriteWAV(path, samples, rate); err != nil {
		u.Log.Warn("Cannot write WAV %s: %v", path, err)
		return
	}
	u.Log.Debug("Wrote WAV: %s", path)
}

// writeOutput creates path exclusively and writes data in one call. Nothing
// is left behind on failure.
func writeOutput(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output appeared during conversion: %w", err)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
