package pcm

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// WriteWAV encodes pcm as a 16-bit mono RIFF/WAV stream into w.
func WriteWAV(w io.WriteSeeker, pcm []byte) error {
	encoder := wav.NewEncoder(w, SampleRate, 16, 1, 1)

	samples := Int16s(pcm)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buffer := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buffer); err != nil {
		return fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encoder close: %w", err)
	}
	return nil
}

// WAVBytes encodes pcm to an in-memory WAV file.
func WAVBytes(pcm []byte) ([]byte, error) {
	wavFile := &writerseeker.WriterSeeker{}
	if err := WriteWAV(wavFile, pcm); err != nil {
		return nil, err
	}

	out, err := io.ReadAll(wavFile.Reader())
	if err != nil {
		return nil, fmt.Errorf("read wav into memory: %w", err)
	}
	return out, nil
}
