package silk

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	gosilk "github.com/wdvxdr1123/go-silk"
)

// encodeSine returns one second of a 440 Hz tone recorded at 24 kHz.
func encodeSine(t *testing.T, tencent bool) []byte {
	t.Helper()
	if tencent {
		stream, err := ReferenceStream()
		if err != nil {
			t.Fatal(err)
		}
		return stream
	}
	pcm := make([]byte, referenceRate*2)
	for i := 0; i < referenceRate; i++ {
		s := int16(math.Sin(2*math.Pi*440*float64(i)/referenceRate) * 8000)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	stream, err := gosilk.EncodePcmBuffToSilk(pcm, referenceRate, referenceBitrate, false)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return stream
}

func TestDecode_AllSampleRates(t *testing.T) {
	for _, tencent := range []bool{true, false} {
		stream := encodeSine(t, tencent)
		for _, rate := range []int{8000, 16000, 24000, 32000, 44100, 48000} {
			pcm, err := NewDecoder().Decode(stream, rate)
			if err != nil {
				t.Errorf("tencent=%v %d Hz: %v", tencent, rate, err)
				continue
			}
			if len(pcm)%2 != 0 {
				t.Errorf("tencent=%v %d Hz: odd PCM length %d", tencent, rate, len(pcm))
			}
			// One second of mono 16-bit audio, give or take one 20 ms frame.
			want, slack := rate*2, rate/50*2
			if len(pcm) < want-slack || len(pcm) > want+slack {
				t.Errorf("tencent=%v %d Hz: %d PCM bytes, want about %d", tencent, rate, len(pcm), want)
			}
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	_, err := NewDecoder().Decode(nil, 16000)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestDecode_GarbageIsAnError(t *testing.T) {
	garbage := []byte("this is definitely not a silk stream")
	pcm, err := NewDecoder().Decode(garbage, 16000)
	if !errors.Is(err, ErrBadHeader) {
		t.Fatalf("err = %v, want ErrBadHeader (%d PCM bytes)", err, len(pcm))
	}
}

func TestDecode_Malformed(t *testing.T) {
	stream := encodeSine(t, true)
	header := len("\x02" + magic)

	oversized := append([]byte("\x02"+magic), 0, 0)
	binary.LittleEndian.PutUint16(oversized[header:], maxPayloadBytes+1)

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated payload", stream[:len(stream)-3], ErrTruncated},
		{"dangling length byte", append([]byte("\x02"+magic), 7), ErrTruncated},
		{"oversized packet", oversized, ErrPacketSize},
		{"prefix without magic", []byte{tencentPrefix, 'x'}, ErrBadHeader},
	}
	for _, tc := range cases {
		if _, err := NewDecoder().Decode(tc.data, 16000); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestDecode_SampleRateRange(t *testing.T) {
	stream := encodeSine(t, true)
	for _, rate := range []int{0, 7999, 48001, 96000} {
		if _, err := NewDecoder().Decode(stream, rate); !errors.Is(err, ErrSampleRate) {
			t.Errorf("%d Hz: err = %v, want ErrSampleRate", rate, err)
		}
	}
}

func TestDecode_HeaderOnly(t *testing.T) {
	pcm, err := NewDecoder().Decode([]byte(magic), 16000)
	if err != nil || len(pcm) != 0 {
		t.Errorf("pcm=%d err=%v, want empty success", len(pcm), err)
	}
}
