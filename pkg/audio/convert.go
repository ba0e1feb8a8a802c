// Package audio provides PCM utilities for feeding the detection engine:
// integer-to-float sample conversion, channel downmixing, and a streaming
// WAV block reader built on go-audio.
package audio

// IntPCMToFloat32 converts integer PCM samples of the given bit depth to
// float32 in [-1, 1), writing into dst. It returns the number of samples
// converted (the smaller of the two slice lengths).
func IntPCMToFloat32(dst []float32, src []int, bitDepth int) int {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float32(int64(1) << (bitDepth - 1))

	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(src[i]) / scale
	}
	return n
}

// DownmixMono averages interleaved multi-channel samples into mono, writing
// one sample per frame into dst. It returns the number of frames written.
// Trailing samples that do not form a whole frame are ignored.
func DownmixMono(dst, src []float32, channels int) int {
	if channels <= 1 {
		n := copy(dst, src)
		return n
	}

	frames := len(src) / channels
	if len(dst) < frames {
		frames = len(dst)
	}
	inv := 1 / float32(channels)
	for f := 0; f < frames; f++ {
		sum := float32(0)
		for c := 0; c < channels; c++ {
			sum += src[f*channels+c]
		}
		dst[f] = sum * inv
	}
	return frames
}
