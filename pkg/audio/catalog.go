package audio

import "math"

// soundSpec describes a synthesized built-in ringtone: a set of component
// frequencies stepped through at the given tempo, an amplitude pattern, and
// the oscillator wave shape.
type soundSpec struct {
	frequencies []float64
	pattern     []float64
	wave        string // sine, square, triangle, sawtooth
	tempoMillis int
}

// builtinSounds is the fixed catalog of synthesized ringtones.
var builtinSounds = map[string]soundSpec{
	"Gentle Wake": {
		frequencies: []float64{440, 554, 659, 880},
		pattern:     []float64{0.3, 0.5, 0.7, 0.9, 0.7, 0.5, 0.3},
		wave:        "sine",
		tempoMillis: 800,
	},
	"Morning Birds": {
		frequencies: []float64{800, 1200, 600, 1000, 1400},
		pattern:     []float64{0.2, 0.8, 0.1, 0.6, 0.3, 0.9, 0.1, 0.4},
		wave:        "sine",
		tempoMillis: 300,
	},
	"Digital Beep": {
		frequencies: []float64{1000, 1000, 1000},
		pattern:     []float64{1, 0, 1, 0, 1, 0, 1},
		wave:        "square",
		tempoMillis: 500,
	},
	"Rooster Call": {
		frequencies: []float64{300, 600, 400, 800, 500, 700},
		pattern:     []float64{0.1, 0.9, 0.3, 0.7, 0.5, 0.8, 0.2, 0.6},
		wave:        "sawtooth",
		tempoMillis: 400,
	},
	"Hen Cluck": {
		frequencies: []float64{200, 400, 300, 250},
		pattern:     []float64{0.8, 0.2, 0.6, 0.1, 0.4, 0.3, 0.7, 0.2},
		wave:        "triangle",
		tempoMillis: 200,
	},
	"Cat Meow": {
		frequencies: []float64{400, 800, 600, 1000, 500, 900},
		pattern:     []float64{0.1, 0.8, 0.3, 0.9, 0.2, 0.6, 0.1, 0.5},
		wave:        "triangle",
		tempoMillis: 600,
	},
	"Ocean Waves": {
		frequencies: []float64{100, 150, 200, 120, 180},
		pattern:     []float64{0.3, 0.6, 0.9, 0.6, 0.3, 0.5, 0.8, 0.4},
		wave:        "sine",
		tempoMillis: 1000,
	},
	"Funny Honk": {
		frequencies: []float64{200, 300, 250},
		pattern:     []float64{1, 0.2, 1, 0.2, 1, 0.5, 0.8},
		wave:        "sawtooth",
		tempoMillis: 600,
	},
	"Space Alarm": {
		frequencies: []float64{1200, 800, 1500, 600, 1800, 400},
		pattern:     []float64{0.5, 0.8, 0.3, 0.9, 0.4, 0.7, 0.6},
		wave:        "triangle",
		tempoMillis: 350,
	},
	"Church Bell": {
		frequencies: []float64{523, 659, 784, 1047},
		pattern:     []float64{1, 0.8, 0.6, 0.4, 0.2, 0.1, 0.05},
		wave:        "sine",
		tempoMillis: 1200,
	},
}

// DefaultSound is the fallback ringtone when an alarm's sound reference is
// empty or no longer resolves.
const DefaultSound = "Gentle Wake"

// BuiltinNames returns the catalog names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinSounds))
	for name := range builtinSounds {
		names = append(names, name)
	}
	return names
}

// IsBuiltin reports whether name is in the catalog.
func IsBuiltin(name string) bool {
	_, ok := builtinSounds[name]
	return ok
}

const (
	synthSampleRate = 44100
	synthChannels   = 2
)

// synthesize renders one full pass of the spec's pattern as interleaved
// 16-bit stereo PCM. The player loops the buffer until stopped.
func synthesize(spec soundSpec) []byte {
	stepSamples := synthSampleRate * spec.tempoMillis / 1000
	buf := make([]byte, 0, len(spec.pattern)*stepSamples*synthChannels*2)

	for step, amplitude := range spec.pattern {
		freq := spec.frequencies[step%len(spec.frequencies)]
		for i := 0; i < stepSamples; i++ {
			phase := float64(i) * freq / synthSampleRate
			// Short attack/release envelope to avoid clicks at step edges.
			env := amplitude * edgeEnvelope(i, stepSamples)
			sample := int16(oscillate(spec.wave, phase) * env * math.MaxInt16 * 0.5)
			for ch := 0; ch < synthChannels; ch++ {
				buf = append(buf, byte(sample), byte(sample>>8))
			}
		}
	}
	return buf
}

func oscillate(wave string, phase float64) float64 {
	frac := phase - math.Floor(phase)
	switch wave {
	case "square":
		if frac < 0.5 {
			return 1
		}
		return -1
	case "triangle":
		return 4*math.Abs(frac-0.5) - 1
	case "sawtooth":
		return 2*frac - 1
	default: // sine
		return math.Sin(2 * math.Pi * phase)
	}
}

func edgeEnvelope(i, total int) float64 {
	const ramp = 512
	if i < ramp {
		return float64(i) / ramp
	}
	if remaining := total - i; remaining < ramp {
		return float64(remaining) / ramp
	}
	return 1
}
