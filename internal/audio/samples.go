package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// BytesPerSample is the width of one mono 16-bit sample.
const BytesPerSample = 2

// ErrOddLength is returned by [ToSamples] under [OddLengthFail] when the PCM
// byte count is not a multiple of [BytesPerSample].
var ErrOddLength = errors.New("decoded PCM has an odd byte count")

// OddLengthPolicy decides how [ToSamples] treats a trailing partial sample.
type OddLengthPolicy int

const (
	// OddLengthFail rejects the stream with [ErrOddLength].
	OddLengthFail OddLengthPolicy = iota
	// OddLengthTruncate drops the trailing byte; the caller must warn.
	OddLengthTruncate
)

// ToSamples interprets pcm as consecutive little-endian int16 samples.
// dropped is the number of trailing bytes discarded under
// [OddLengthTruncate] (0 or 1).
func ToSamples(pcm []byte, policy OddLengthPolicy) (samples []int16, dropped int, err error) {
	rem := len(pcm) % BytesPerSample
	if rem != 0 {
		if policy != OddLengthTruncate {
			return nil, 0, fmt.Errorf("%w (%d bytes)", ErrOddLength, len(pcm))
		}
		dropped = rem
	}

	n := len(pcm) / BytesPerSample
	samples = make([]int16, n)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*BytesPerSample:]))
	}
	return samples, dropped, nil
}
