package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueStop
	cueError
)

const cueSampleRate = 16000

type tone struct {
	hz     float64
	length time.Duration
}

const (
	cueVolume = 0.18
	cueGap    = 22 * time.Millisecond
	cueRamp   = 5 * time.Millisecond
)

var cues = map[cueKind][]int16{
	cueStart: synthesize(tone{880, 70 * time.Millisecond}, tone{1175, 70 * time.Millisecond}),
	cueStop:  synthesize(tone{740, 65 * time.Millisecond}, tone{988, 90 * time.Millisecond}),
	cueError: synthesize(tone{480, 75 * time.Millisecond}, tone{360, 90 * time.Millisecond}),
}

// emitCue plays one cue on the default Pulse sink and waits for it to drain.
func emitCue(kind cueKind) error {
	samples := cues[kind]
	if len(samples) == 0 {
		return nil
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("livescribe"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("livescribe cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue: %w", err)
	}
	return nil
}

// synthesize renders tones back to back with a short silent gap between them.
func synthesize(tones ...tone) []int16 {
	gap := make([]int16, sampleCount(cueGap))
	var out []int16
	for i, t := range tones {
		if i > 0 {
			out = append(out, gap...)
		}
		out = append(out, sine(t)...)
	}
	return out
}

// sine renders one tone with a linear attack and release to avoid clicks.
func sine(t tone) []int16 {
	n := sampleCount(t.length)
	if n <= 0 || t.hz <= 0 {
		return nil
	}
	ramp := min(max(n/10, 1), sampleCount(cueRamp))

	out := make([]int16, n)
	for i := range out {
		envelope := 1.0
		if i < ramp {
			envelope = float64(i) / float64(ramp)
		}
		if tail := n - i - 1; tail < ramp {
			envelope = min(envelope, float64(tail)/float64(ramp))
		}
		v := math.Sin(2 * math.Pi * t.hz * float64(i) / cueSampleRate)
		out[i] = int16(math.Round(v * cueVolume * envelope * math.MaxInt16))
	}
	return out
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
