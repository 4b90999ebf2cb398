package transcode

// Decoder turns a complete encoded stream into mono 16-bit little-endian PCM
// at sampleRate. It either honors the rate or returns an error.
type Decoder interface {
	Decode(data []byte, sampleRate int) ([]byte, error)
}

// Encoder is a configured MP3 encoder for one conversion.
type Encoder interface {
	// MaxEncodedSize is the worst-case output of encoding samples samples
	// followed by a flush.
	MaxEncodedSize(samples int) int
	// Encode writes into out and reports how many bytes it wrote.
	Encode(samples []int16, out []byte) (int, error)
	// Flush writes trailing frames without gap padding into out.
	Flush(out []byte) (int, error)
	Close() error
}

// EncoderSettings is what an [EncoderFactory] must honor or reject.
type EncoderSettings struct {
	Channels    int
	SampleRate  int
	BitrateKbps int
	Quality     int
}

// EncoderFactory builds an Encoder, failing if any setting is unsupported.
type EncoderFactory func(EncoderSettings) (Encoder, error)

// Logger is the subset of logging.Logger the unit needs.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Debug(string, ...interface{})
}
