// Package lame is a minimal cgo binding to libmp3lame for whole-buffer mono
// encoding: configure once, encode all samples into caller-provided memory,
// then flush without gap padding.
package lame

/*
#cgo darwin CFLAGS: -I/opt/homebrew/include
#cgo darwin LDFLAGS: -L/opt/homebrew/lib -lmp3lame
#cgo linux LDFLAGS: -lmp3lame
#include <lame/lame.h>
#include <stdlib.h>
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"
)

// Quality presets for the psychoacoustic search (0 = best, 9 = fastest).
type Quality int

const (
	QualityBest Quality = 0
	QualityHigh Quality = 2
	QualityGood Quality = 5
	QualityLow  Quality = 7
	QualityFast Quality = 9
)

// Sentinel errors. Encode and flush errors wrap one of these.
var (
	ErrInit           = errors.New("lame: failed to initialize")
	ErrRejected       = errors.New("lame: parameters rejected")
	ErrBufferTooSmall = errors.New("lame: output buffer too small")
	ErrAlloc          = errors.New("lame: allocation failed")
	ErrNotInitialized = errors.New("lame: init_params not called")
	ErrPsycho         = errors.New("lame: psychoacoustic model failure")
	ErrClosed         = errors.New("lame: encoder is closed")
)

// flushReserve is the minimum buffer LAME documents for a flush call.
const flushReserve = 7200

// Config is the fixed encoder configuration.
type Config struct {
	Channels    int
	SampleRate  int
	BitrateKbps int
	Quality     Quality
}

// Encoder wraps one lame_global_flags handle. It is not safe for concurrent
// use; each conversion owns its own Encoder.
type Encoder struct {
	gf  *C.lame_global_flags
	cfg Config
}

// New builds and initializes an encoder. Only mono input is supported.
func New(cfg Config) (*Encoder, error) {
	if cfg.Channels != 1 {
		return nil, fmt.Errorf("%w: channels must be 1, got %d", ErrRejected, cfg.Channels)
	}

	gf := C.lame_init()
	if gf == nil {
		return nil, ErrInit
	}

	fail := func(what string, v int) (*Encoder, error) {
		C.lame_close(gf)
		return nil, fmt.Errorf("%w: %s %d", ErrRejected, what, v)
	}

	if C.lame_set_num_channels(gf, C.int(cfg.Channels)) < 0 {
		return fail("channels", cfg.Channels)
	}
	if C.lame_set_in_samplerate(gf, C.int(cfg.SampleRate)) < 0 {
		return fail("sample rate", cfg.SampleRate)
	}
	if C.lame_set_mode(gf, C.MONO) < 0 {
		return fail("mode", int(C.MONO))
	}
	if C.lame_set_VBR(gf, C.vbr_off) < 0 {
		return fail("vbr", int(C.vbr_off))
	}
	if C.lame_set_brate(gf, C.int(cfg.BitrateKbps)) < 0 {
		return fail("bitrate", cfg.BitrateKbps)
	}
	if C.lame_set_quality(gf, C.int(cfg.Quality)) < 0 {
		return fail("quality", int(cfg.Quality))
	}
	if C.lame_init_params(gf) < 0 {
		C.lame_close(gf)
		return nil, fmt.Errorf("%w: %d Hz, %d ch, %d kbps", ErrRejected, cfg.SampleRate, cfg.Channels, cfg.BitrateKbps)
	}

	return &Encoder{gf: gf, cfg: cfg}, nil
}

// MaxEncodedSize is the worst-case byte count for encoding samples mono
// samples and flushing. It is LAME's documented 1.25*n + 7200 bound, raised
// for low input rates where the configured bitrate outpaces it.
func (e *Encoder) MaxEncodedSize(samples int) int {
	bound := samples*5/4 + flushReserve
	if e.cfg.SampleRate > 0 {
		// bytes = samples / rate * kbps * 1000 / 8, plus one frame of slack
		cbr := samples*e.cfg.BitrateKbps*125/e.cfg.SampleRate + 2*flushReserve
		if cbr > bound {
			bound = cbr
		}
	}
	return bound
}

// Encode encodes samples into out and returns the number of bytes written.
func (e *Encoder) Encode(samples []int16, out []byte) (int, error) {
	if e.gf == nil {
		return 0, ErrClosed
	}
	if len(samples) == 0 {
		return 0, nil
	}
	if len(out) == 0 {
		// A zero size means "unbounded" to LAME.
		return 0, ErrBufferTooSmall
	}
	n := C.lame_encode_buffer(
		e.gf,
		(*C.short)(unsafe.Pointer(&samples[0])),
		nil, // mono: right channel ignored
		C.int(len(samples)),
		(*C.uchar)(unsafe.Pointer(&out[0])),
		C.int(len(out)),
	)
	return result(int(n))
}

// Flush emits the remaining frames without appending padding for gapless
// playback and returns the number of bytes written.
func (e *Encoder) Flush(out []byte) (int, error) {
	if e.gf == nil {
		return 0, ErrClosed
	}
	if len(out) == 0 {
		return 0, ErrBufferTooSmall
	}
	n := C.lame_encode_flush_nogap(
		e.gf,
		(*C.uchar)(unsafe.Pointer(&out[0])),
		C.int(len(out)),
	)
	return result(int(n))
}

// Close releases the LAME handle. It is safe to call more than once.
func (e *Encoder) Close() error {
	if e.gf != nil {
		C.lame_close(e.gf)
		e.gf = nil
	}
	return nil
}

// Version returns the libmp3lame version string.
func Version() string {
	return C.GoString(C.get_lame_version())
}

// result maps LAME's negative return codes to errors.
func result(n int) (int, error) {
	switch {
	case n >= 0:
		return n, nil
	case n == -1:
		return 0, ErrBufferTooSmall
	case n == -2:
		return 0, ErrAlloc
	case n == -3:
		return 0, ErrNotInitialized
	case n == -4:
		return 0, ErrPsycho
	default:
		return 0, fmt.Errorf("lame: error code %d", n)
	}
}
