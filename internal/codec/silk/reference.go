package silk

import (
	"encoding/binary"
	"fmt"
	"math"

	gosilk "github.com/wdvxdr1123/go-silk"
)

// Reference stream parameters. The stream holds ReferenceSeconds of a
// 440 Hz tone encoded at 24 kHz, so a correct decode at rate r yields about
// r*2*ReferenceSeconds bytes.
const (
	ReferenceSeconds = 1
	referenceRate    = 24000
	referenceBitrate = 24000
)

// ReferenceStream encodes a known tone into a Tencent-prefixed SILK stream
// for self-tests.
func ReferenceStream() ([]byte, error) {
	n := referenceRate * ReferenceSeconds
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := int16(math.Sin(2*math.Pi*440*float64(i)/referenceRate) * 8000)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	stream, err := gosilk.EncodePcmBuffToSilk(pcm, referenceRate, referenceBitrate, true)
	if err != nil {
		return nil, fmt.Errorf("silk: encode reference: %w", err)
	}
	return stream, nil
}
