// Package check provides system diagnostics (--check mode): it reports the
// linked libmp3lame version, probes the encoder at every supported sample
// rate, decodes a reference SILK stream at every supported rate, and confirms
// the SILK decoder rejects malformed input.
package check

import (
	"errors"
	"fmt"

	"github.com/backmassage/silk2mp3/internal/audio"
	"github.com/backmassage/silk2mp3/internal/config"
	"github.com/backmassage/silk2mp3/internal/transcode"
)

// probeSamples is one MPEG-1 Layer III frame of input.
const probeSamples = 1152

// Sentinel errors reported by the individual probes.
var (
	ErrNoOutput       = errors.New("encoder produced no output")
	ErrAcceptsGarbage = errors.New("decoder accepted malformed input")
	ErrNoReference    = errors.New("no reference stream to decode")
	ErrBadPCMLength   = errors.New("decoded length does not match the reference duration")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Probes bundles what RunCheck exercises.
type Probes struct {
	EncoderVersion string
	NewEncoder     transcode.EncoderFactory
	Decoder        transcode.Decoder

	// Reference is a valid SILK stream of ReferenceSeconds duration.
	Reference        []byte
	ReferenceSeconds int
}

// RunCheck runs every probe and logs each outcome. It returns true only if
// all of them pass.
func RunCheck(cfg *config.Config, log Logger, p Probes) bool {
	log.Info("=== System Check ===")
	ok := true

	if p.EncoderVersion != "" {
		log.Success("libmp3lame: %s", p.EncoderVersion)
	} else {
		log.Warn("libmp3lame: version unknown")
	}

	log.Info("Encoder (mono, %d kbps, quality %d):", cfg.BitrateKbps, cfg.Quality)
	for _, rate := range config.SupportedSampleRates {
		n, err := probeEncoder(p.NewEncoder, transcode.EncoderSettings{
			Channels:    transcode.Channels,
			SampleRate:  int(rate),
			BitrateKbps: cfg.BitrateKbps,
			Quality:     cfg.Quality,
		})
		if err != nil {
			log.Error("  %5d Hz: %v", int(rate), err)
			ok = false
			continue
		}
		log.Success("  %5d Hz: %d bytes", int(rate), n)
	}

	log.Info("SILK decoder:")
	for _, rate := range config.SupportedSampleRates {
		n, err := decodeReference(p.Decoder, p.Reference, p.ReferenceSeconds, int(rate))
		if err != nil {
			log.Error("  %5d Hz: %v", int(rate), err)
			ok = false
			continue
		}
		log.Success("  %5d Hz: %d samples", int(rate), n)
	}
	if err := probeDecoder(p.Decoder, int(cfg.SampleRate)); err != nil {
		log.Error("  %v", err)
		ok = false
	} else {
		log.Success("  rejects malformed input")
	}

	return ok
}

// probeEncoder configures an encoder and runs one frame of silence through
// encode and flush, returning the total bytes produced.
func probeEncoder(newEncoder transcode.EncoderFactory, s transcode.EncoderSettings) (int, error) {
	enc, err := newEncoder(s)
	if err != nil {
		return 0, fmt.Errorf("configure: %w", err)
	}
	defer enc.Close()

	samples := make([]int16, probeSamples)
	buf := audio.NewBuffer(enc.MaxEncodedSize(len(samples)))
	n, err := enc.Encode(samples, buf.Spare())
	if err == nil {
		err = buf.Commit(n)
	}
	if err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	n, err = enc.Flush(buf.Spare())
	if err == nil {
		err = buf.Commit(n)
	}
	if err != nil {
		return 0, fmt.Errorf("flush: %w", err)
	}
	if buf.Len() == 0 {
		return 0, ErrNoOutput
	}
	return buf.Len(), nil
}

// decodeReference decodes the reference stream at rate and checks the PCM is
// whole samples lasting seconds, give or take one 20 ms frame. It returns the
// sample count.
func decodeReference(dec transcode.Decoder, stream []byte, seconds, rate int) (int, error) {
	if len(stream) == 0 || seconds <= 0 {
		return 0, ErrNoReference
	}
	pcm, err := dec.Decode(stream, rate)
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}
	want, slack := rate*seconds*2, rate/50*2
	if len(pcm)%2 != 0 || len(pcm) < want-slack || len(pcm) > want+slack {
		return 0, fmt.Errorf("%w: %d bytes, want about %d", ErrBadPCMLength, len(pcm), want)
	}
	return len(pcm) / 2, nil
}

// probeDecoder feeds the decoder bytes that are not a SILK stream.
func probeDecoder(dec transcode.Decoder, rate int) error {
	garbage := []byte("#!SILK_V3 this is not a valid payload")
	if _, err := dec.Decode(garbage, rate); err == nil {
		return ErrAcceptsGarbage
	}
	return nil
}
