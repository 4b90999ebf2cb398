package transcode

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/silk2mp3/internal/audio"
)

// --- Fakes ---

type testLogger struct{ warnings []string }

func (l *testLogger) Info(string, ...interface{})    {}
func (l *testLogger) Success(string, ...interface{}) {}
func (l *testLogger) Debug(string, ...interface{})   {}
func (l *testLogger) Warn(f string, _ ...interface{}) {
	l.warnings = append(l.warnings, f)
}

// fakeDecoder returns its PCM (or error) and records calls.
type fakeDecoder struct {
	pcm   []byte
	err   error
	calls int
	rate  int
}

func (d *fakeDecoder) Decode(data []byte, sampleRate int) ([]byte, error) {
	d.calls++
	d.rate = sampleRate
	return d.pcm, d.err
}

// fakeEncoder writes encodeOut on Encode and flushOut on Flush.
type fakeEncoder struct {
	settings    EncoderSettings
	encodeOut   []byte
	flushOut    []byte
	encodeErr   error
	flushErr    error
	overReport  int // added to the reported encode count
	gotSamples  int
	spareAtEnc  int
	closed      bool
	maxEstimate int
}

func (e *fakeEncoder) MaxEncodedSize(samples int) int {
	if e.maxEstimate > 0 {
		return e.maxEstimate
	}
	return samples*5/4 + 7200
}

func (e *fakeEncoder) Encode(samples []int16, out []byte) (int, error) {
	e.gotSamples = len(samples)
	e.spareAtEnc = len(out)
	if e.encodeErr != nil {
		return 0, e.encodeErr
	}
	return copy(out, e.encodeOut) + e.overReport, nil
}

func (e *fakeEncoder) Flush(out []byte) (int, error) {
	if e.flushErr != nil {
		return 0, e.flushErr
	}
	return copy(out, e.flushOut), nil
}

func (e *fakeEncoder) Close() error {
	e.closed = true
	return nil
}

func newTestUnit(dec Decoder, enc *fakeEncoder, configErr error) (*Unit, *testLogger) {
	log := &testLogger{}
	u := NewUnit(dec, func(s EncoderSettings) (Encoder, error) {
		if configErr != nil {
			return nil, configErr
		}
		enc.settings = s
		return enc, nil
	}, log)
	return u, log
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!SILK_V3 fake"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// --- Tests ---

func TestTranscode_Success(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")

	dec := &fakeDecoder{pcm: make([]byte, 2*320)}
	enc := &fakeEncoder{encodeOut: []byte("FRAMES"), flushOut: []byte("TAIL")}
	u, _ := newTestUnit(dec, enc, nil)

	res, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 24000})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}

	wantOut := filepath.Join(dir, "voice.mp3")
	if res.OutputPath != wantOut {
		t.Errorf("OutputPath = %q, want %q", res.OutputPath, wantOut)
	}
	got, err := os.ReadFile(wantOut)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "FRAMESTAIL" {
		t.Errorf("output = %q, want main encode output followed by flush", got)
	}
	if dec.rate != 24000 {
		t.Errorf("decoder rate = %d, want 24000", dec.rate)
	}
	want := EncoderSettings{Channels: 1, SampleRate: 24000, BitrateKbps: 128, Quality: 5}
	if enc.settings != want {
		t.Errorf("encoder settings = %+v, want %+v", enc.settings, want)
	}
	if !enc.closed {
		t.Error("encoder not closed")
	}
}

func TestTranscode_RoundTripSizing(t *testing.T) {
	const n = 4800
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")

	dec := &fakeDecoder{pcm: make([]byte, 2*n)}
	enc := &fakeEncoder{
		encodeOut: bytes.Repeat([]byte{0xAA}, 1000),
		flushOut:  bytes.Repeat([]byte{0xBB}, 417),
	}
	u, _ := newTestUnit(dec, enc, nil)

	res, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 16000})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if enc.gotSamples != n {
		t.Errorf("encoder got %d samples (%d bytes), want %d samples (%d bytes)", enc.gotSamples, 2*enc.gotSamples, n, 2*n)
	}
	if enc.spareAtEnc != enc.MaxEncodedSize(n) {
		t.Errorf("encode spare = %d, want the encoder's estimate %d", enc.spareAtEnc, enc.MaxEncodedSize(n))
	}
	if res.EncodedBytes != 1000 || res.FlushedBytes != 417 {
		t.Errorf("encoded=%d flushed=%d", res.EncodedBytes, res.FlushedBytes)
	}
	if res.OutputBytes != int64(res.EncodedBytes+res.FlushedBytes) {
		t.Errorf("OutputBytes = %d, want %d", res.OutputBytes, res.EncodedBytes+res.FlushedBytes)
	}
	fi, err := os.Stat(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != res.OutputBytes {
		t.Errorf("file size = %d, want %d", fi.Size(), res.OutputBytes)
	}
}

func TestTranscode_SkipsExistingWithoutReading(t *testing.T) {
	dir := t.TempDir()
	// Input does not even exist: a skip must not touch it.
	in := filepath.Join(dir, "voice.silk")
	out := filepath.Join(dir, "voice.mp3")
	if err := os.WriteFile(out, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	dec := &fakeDecoder{}
	u, _ := newTestUnit(dec, &fakeEncoder{}, nil)
	res, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 16000})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if !res.Skipped {
		t.Error("Skipped = false")
	}
	if dec.calls != 0 {
		t.Errorf("decoder called %d times on skip", dec.calls)
	}
	b, _ := os.ReadFile(out)
	if string(b) != "previous" {
		t.Errorf("existing output overwritten: %q", b)
	}
}

func TestTranscode_OutputOverride(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	out := filepath.Join(dir, "renamed.mp3")

	u, _ := newTestUnit(&fakeDecoder{pcm: []byte{1, 0}}, &fakeEncoder{encodeOut: []byte("x")}, nil)
	if _, err := u.Transcode(context.Background(), Request{InputPath: in, OutputPath: out, SampleRate: 16000}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("override output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "voice.mp3")); err == nil {
		t.Error("derived output written despite override")
	}
}

func TestTranscode_ErrorKinds(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		noInput   bool
		dec       *fakeDecoder
		enc       *fakeEncoder
		configErr error
		outputDir bool // make output path unwritable by using a missing dir
		want      Kind
	}{
		{"unreadable input", true, &fakeDecoder{}, &fakeEncoder{}, nil, false, KindInputRead},
		{"decoder error", false, &fakeDecoder{err: boom}, &fakeEncoder{}, nil, false, KindDecode},
		{"odd pcm", false, &fakeDecoder{pcm: []byte{1, 2, 3}}, &fakeEncoder{}, nil, false, KindDecode},
		{"encoder config", false, &fakeDecoder{pcm: []byte{1, 2}}, &fakeEncoder{}, boom, false, KindEncoderConfig},
		{"encode error", false, &fakeDecoder{pcm: []byte{1, 2}}, &fakeEncoder{encodeErr: boom}, nil, false, KindEncode},
		{"encode over-report", false, &fakeDecoder{pcm: []byte{1, 2}}, &fakeEncoder{maxEstimate: 4, encodeOut: []byte("abcd"), overReport: 1}, nil, false, KindEncode},
		{"flush error", false, &fakeDecoder{pcm: []byte{1, 2}}, &fakeEncoder{flushErr: boom}, nil, false, KindFlush},
		{"output dir missing", false, &fakeDecoder{pcm: []byte{1, 2}}, &fakeEncoder{encodeOut: []byte("x")}, nil, true, KindOutputWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "voice.silk")
			if !tt.noInput {
				writeInput(t, dir, "voice.silk")
			}
			req := Request{InputPath: in, SampleRate: 16000}
			if tt.outputDir {
				req.OutputPath = filepath.Join(dir, "missing", "voice.mp3")
			}

			u, _ := newTestUnit(tt.dec, tt.enc, tt.configErr)
			_, err := u.Transcode(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			kind, ok := KindOf(err)
			if !ok || kind != tt.want {
				t.Fatalf("kind = %v (%v), want %v; err = %v", kind, ok, tt.want, err)
			}
			if !strings.Contains(err.Error(), in) {
				t.Errorf("error %q does not name the input", err)
			}
			entries, _ := os.ReadDir(dir)
			for _, e := range entries {
				if filepath.Ext(e.Name()) == ".mp3" {
					t.Errorf("output %s created on failure", e.Name())
				}
			}
		})
	}
}

func TestTranscode_DecodeErrorCarriesMessage(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	u, _ := newTestUnit(&fakeDecoder{err: errors.New("bad frame header")}, &fakeEncoder{}, nil)
	_, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 16000})
	if err == nil || !strings.Contains(err.Error(), "bad frame header") {
		t.Errorf("err = %v, want decoder diagnostic", err)
	}
}

func TestTranscode_OddLengthFailIsDefault(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	u, _ := newTestUnit(&fakeDecoder{pcm: []byte{1, 0, 2}}, &fakeEncoder{}, nil)
	_, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 16000})
	if !errors.Is(err, audio.ErrOddLength) {
		t.Errorf("err = %v, want ErrOddLength", err)
	}
}

func TestTranscode_OddLengthTruncateWarns(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	enc := &fakeEncoder{encodeOut: []byte("x")}
	u, log := newTestUnit(&fakeDecoder{pcm: []byte{1, 0, 2, 0, 3}}, enc, nil)
	u.OddLength = audio.OddLengthTruncate

	if _, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 16000}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if enc.gotSamples != 2 {
		t.Errorf("encoder got %d samples, want 2", enc.gotSamples)
	}
	if len(log.warnings) == 0 {
		t.Error("truncation was silent")
	}
}

func TestTranscode_KeepWAV(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	u, _ := newTestUnit(&fakeDecoder{pcm: []byte{1, 0, 2, 0}}, &fakeEncoder{encodeOut: []byte("x")}, nil)
	u.KeepWAV = true

	if _, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 8000}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "voice.wav")); err != nil {
		t.Errorf("wav sidecar missing: %v", err)
	}
}

func TestTranscode_NoWAVOnFailure(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	u, _ := newTestUnit(&fakeDecoder{pcm: []byte{1, 0}}, &fakeEncoder{flushErr: errors.New("x")}, nil)
	u.KeepWAV = true

	if _, err := u.Transcode(context.Background(), Request{InputPath: in, SampleRate: 8000}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(dir, "voice.wav")); err == nil {
		t.Error("wav sidecar written for a failed conversion")
	}
}

func TestTranscode_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "voice.silk")
	dec := &fakeDecoder{pcm: []byte{1, 0}}
	u, _ := newTestUnit(dec, &fakeEncoder{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := u.Transcode(ctx, Request{InputPath: in, SampleRate: 16000}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if dec.calls != 0 {
		t.Error("decoder called after cancellation")
	}
}

func TestKindString(t *testing.T) {
	if KindFlush.String() != "flush encoder" {
		t.Errorf("KindFlush = %q", KindFlush.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unknown kind = %q", Kind(99).String())
	}
}
