package audio

import (
	"errors"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned by NewBlockReader when the input is not a decodable
// RIFF/WAV stream.
var ErrNotWAV = errors.New("audio: input is not a valid WAV stream")

// BlockReader streams a WAV file as fixed-size blocks of mono float32
// samples, downmixing multi-channel input on the fly. It never loads the
// whole file into memory, which keeps arbitrarily long recordings usable
// with the streaming detector.
type BlockReader struct {
	dec      *wav.Decoder
	intBuf   *gaudio.IntBuffer
	floatBuf []float32
	monoBuf  []float32
	channels int
	bitDepth int
}

// NewBlockReader validates the WAV header of r and prepares a reader that
// yields up to blockSize mono samples per call to Next.
func NewBlockReader(r io.ReadSeeker, blockSize int) (*BlockReader, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("audio: block size %d must be positive", blockSize)
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("audio: WAV header reports %d channels", channels)
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("audio: unsupported bit depth %d", bitDepth)
	}

	return &BlockReader{
		dec:      dec,
		intBuf:   &gaudio.IntBuffer{Data: make([]int, blockSize*channels)},
		floatBuf: make([]float32, blockSize*channels),
		monoBuf:  make([]float32, blockSize),
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

// SampleRate returns the stream's sample rate in Hz.
func (br *BlockReader) SampleRate() int { return int(br.dec.SampleRate) }

// Channels returns the channel count of the source before downmixing.
func (br *BlockReader) Channels() int { return br.channels }

// Next returns the next block of mono samples. The returned slice is reused
// by subsequent calls; copy it if it must outlive the next Next. It returns
// io.EOF once the stream is exhausted.
func (br *BlockReader) Next() ([]float32, error) {
	n, err := br.dec.PCMBuffer(br.intBuf)
	if err != nil {
		return nil, fmt.Errorf("audio: decode PCM: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	n -= n % br.channels // drop a trailing partial frame, if any
	converted := IntPCMToFloat32(br.floatBuf[:n], br.intBuf.Data[:n], br.bitDepth)
	frames := DownmixMono(br.monoBuf, br.floatBuf[:converted], br.channels)
	return br.monoBuf[:frames], nil
}
