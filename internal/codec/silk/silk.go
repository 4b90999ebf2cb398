// Package silk adapts the go-silk SDK decoder to the transcode Decoder
// contract.
//
// The stream framing (optional 0x02 prefix, "#!SILK_V3" magic, then
// little-endian int16 length-prefixed packets) is parsed here and each packet
// is handed to the SDK's SKP_Silk_SDK_Decode. All memory the translated C
// code touches is allocated through modernc.org/libc so its size is fixed by
// this package and never by the output rate.
package silk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/wdvxdr1123/go-silk/sdk"
	"modernc.org/libc"
	"modernc.org/libc/sys/types"
)

const (
	tencentPrefix = 0x02
	magic         = "#!SILK_V3"

	// maxPayloadBytes is MAX_BYTES_PER_FRAME * MAX_INPUT_FRAMES.
	maxPayloadBytes = 250 * 5
	// maxFramesPerPacket bounds the moreInternalDecoderFrames loop.
	maxFramesPerPacket = 5
	// maxFrameSamples is two 20 ms frames at 48 kHz; one decode call emits
	// at most API_sampleRate/50 samples.
	maxFrameSamples = 48 * 20 * 2

	minSampleRate = 8000
	maxSampleRate = 48000
)

// Sentinel errors. Decode errors wrap one of these or carry the SDK code.
var (
	ErrEmptyInput = errors.New("silk: empty input")
	ErrBadHeader  = errors.New("silk: missing #!SILK_V3 header")
	ErrPacketSize = errors.New("silk: packet length out of range")
	ErrTruncated  = errors.New("silk: truncated packet")
	ErrSampleRate = errors.New("silk: output sample rate out of range")
	ErrAlloc      = errors.New("silk: allocation failed")
	ErrCodec      = errors.New("silk: codec error")
)

// Decoder decodes SILK v3 streams (with or without the Tencent 0x02 prefix)
// to mono 16-bit little-endian PCM.
type Decoder struct{}

// NewDecoder returns a ready decoder. It holds no state; every Decode call
// gets a fresh SDK decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode decodes data at sampleRate Hz (8000 to 48000).
//
// The SDK is translated C and can panic on malformed frames; a panic is
// reported as an error so one bad file cannot end a batch.
func (d *Decoder) Decode(data []byte, sampleRate int) (pcm []byte, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return nil, fmt.Errorf("%w: %d Hz", ErrSampleRate, sampleRate)
	}
	stream, err := stripHeader(data)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			pcm = nil
			err = fmt.Errorf("silk: decoder panic: %v", r)
		}
	}()
	return decodePackets(stream, sampleRate)
}

// stripHeader returns the packet stream after the magic.
func stripHeader(data []byte) ([]byte, error) {
	if data[0] == tencentPrefix {
		data = data[1:]
	}
	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, ErrBadHeader
	}
	return data[len(magic):], nil
}

// decodePackets runs every length-prefixed packet through one SDK decoder.
// A negative length is the end-of-stream marker; the stream may also just
// end on a packet boundary.
func decodePackets(stream []byte, sampleRate int) ([]byte, error) {
	m := newCMem()
	defer m.free()

	sizeP, err := m.alloc(4)
	if err != nil {
		return nil, err
	}
	if ret := sdk.SKP_Silk_SDK_Get_Decoder_Size(m.tls, sizeP); ret != 0 {
		return nil, fmt.Errorf("%w: get decoder size returned %d", ErrCodec, ret)
	}
	state, err := m.alloc(int(*(*int32)(unsafe.Pointer(sizeP))))
	if err != nil {
		return nil, err
	}
	if ret := sdk.SKP_Silk_SDK_InitDecoder(m.tls, state); ret != 0 {
		return nil, fmt.Errorf("%w: init decoder returned %d", ErrCodec, ret)
	}

	ctlP, err := m.alloc(int(unsafe.Sizeof(sdk.SKP_SILK_SDK_DecControlStruct{})))
	if err != nil {
		return nil, err
	}
	ctl := (*sdk.SKP_SILK_SDK_DecControlStruct)(unsafe.Pointer(ctlP))
	ctl.FAPI_sampleRate = int32(sampleRate)
	ctl.FframesPerPacket = 1

	in, err := m.alloc(maxPayloadBytes)
	if err != nil {
		return nil, err
	}
	out, err := m.alloc(maxFrameSamples * 2)
	if err != nil {
		return nil, err
	}
	nSamplesP, err := m.alloc(2)
	if err != nil {
		return nil, err
	}
	nSamples := (*int16)(unsafe.Pointer(nSamplesP))
	inBuf := unsafe.Slice((*byte)(unsafe.Pointer(in)), maxPayloadBytes)
	outBuf := unsafe.Slice((*byte)(unsafe.Pointer(out)), maxFrameSamples*2)

	var pcm []byte
	for packet := 0; ; packet++ {
		if len(stream) == 0 {
			break
		}
		if len(stream) < 2 {
			return nil, fmt.Errorf("%w: packet %d: length prefix", ErrTruncated, packet)
		}
		n := int(int16(binary.LittleEndian.Uint16(stream)))
		stream = stream[2:]
		if n < 0 {
			break
		}
		if n > maxPayloadBytes {
			return nil, fmt.Errorf("%w: packet %d: %d bytes", ErrPacketSize, packet, n)
		}
		if n > len(stream) {
			return nil, fmt.Errorf("%w: packet %d: want %d bytes, have %d", ErrTruncated, packet, n, len(stream))
		}
		copy(inBuf, stream[:n])
		stream = stream[n:]

		// An empty packet is a lost frame; the SDK conceals it.
		lost := int32(0)
		if n == 0 {
			lost = 1
		}
		for frame := 0; frame < maxFramesPerPacket; frame++ {
			*nSamples = 0
			ret := sdk.SKP_Silk_SDK_Decode(m.tls, state, ctlP, lost, in, int32(n), out, nSamplesP)
			if ret != 0 {
				return nil, fmt.Errorf("%w: packet %d: decode returned %d", ErrCodec, packet, ret)
			}
			k := int(*nSamples)
			if k < 0 || k > maxFrameSamples {
				return nil, fmt.Errorf("%w: packet %d: %d samples", ErrCodec, packet, k)
			}
			pcm = append(pcm, outBuf[:k*2]...)
			if ctl.FmoreInternalDecoderFrames == 0 {
				break
			}
		}
	}
	return pcm, nil
}

// cMem owns a libc TLS and every block allocated on it.
type cMem struct {
	tls  *libc.TLS
	ptrs []uintptr
}

func newCMem() *cMem { return &cMem{tls: libc.NewTLS()} }

// alloc returns n zeroed bytes of libc memory.
func (m *cMem) alloc(n int) (uintptr, error) {
	p := libc.Xcalloc(m.tls, 1, types.Size_t(n))
	if p == 0 {
		return 0, fmt.Errorf("%w: %d bytes", ErrAlloc, n)
	}
	m.ptrs = append(m.ptrs, p)
	return p, nil
}

func (m *cMem) free() {
	for _, p := range m.ptrs {
		libc.Xfree(m.tls, p)
	}
	m.ptrs = nil
	m.tls.Close()
}
