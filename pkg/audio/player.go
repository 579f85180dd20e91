// Package audio implements the alarm playback collaborator on top of oto.
// Built-in ringtones are synthesized from the catalog; custom ringtones are
// WAV blobs from the audio asset store. Playback loops until stopped and
// supports gradual volume fade-in.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Audio context singleton, initialized with the format of the first sound
// played.
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	audioCtxReady      bool
)

// wavFormat holds WAV file format information.
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func initAudioContext(format *wavFormat, log *zap.Logger) {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Error("failed to initialize audio context", zap.Error(err))
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		audioCtxReady = true
		log.Info("audio context initialized",
			zap.Int("sample_rate", format.SampleRate),
			zap.Int("channels", format.Channels),
		)
	})
}

// Manager creates playback handles and tracks them for StopAll.
type Manager struct {
	log *zap.Logger

	mu     sync.Mutex
	active map[*Handle]struct{}
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log, active: make(map[*Handle]struct{})}
}

// PlayBuiltIn starts looping playback of a catalog ringtone. volume is 0-1;
// a non-zero fadeIn ramps the volume up from silence over that duration.
func (m *Manager) PlayBuiltIn(name string, volume float64, fadeIn time.Duration) (*Handle, error) {
	spec, ok := builtinSounds[name]
	if !ok {
		spec = builtinSounds[DefaultSound]
		if name != "" {
			m.log.Warn("unknown built-in sound, using default", zap.String("name", name))
		}
	}
	pcm := synthesize(spec)
	format := &wavFormat{SampleRate: synthSampleRate, Channels: synthChannels, BitDepth: 16}
	return m.start(pcm, format, volume, fadeIn)
}

// PlayCustom starts looping playback of a stored WAV asset.
func (m *Manager) PlayCustom(wavData []byte, volume float64, fadeIn time.Duration) (*Handle, error) {
	format, pcm, err := parseWAV(wavData)
	if err != nil {
		return nil, fmt.Errorf("parse wav: %w", err)
	}
	return m.start(pcm, format, volume, fadeIn)
}

func (m *Manager) start(pcm []byte, format *wavFormat, volume float64, fadeIn time.Duration) (*Handle, error) {
	initAudioContext(format, m.log)
	if !audioCtxReady || globalAudioCtx == nil {
		return nil, fmt.Errorf("audio context not ready")
	}

	h := &Handle{
		stopChan: make(chan struct{}),
		target:   clampVolume(volume),
		manager:  m,
	}

	m.mu.Lock()
	m.active[h] = struct{}{}
	m.mu.Unlock()

	go h.playLoop(pcm, fadeIn)
	return h, nil
}

// StopAll stops every active playback handle.
func (m *Manager) StopAll() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.active))
	for h := range m.active {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

func (m *Manager) release(h *Handle) {
	m.mu.Lock()
	delete(m.active, h)
	m.mu.Unlock()
}

// Handle controls one looping playback session.
type Handle struct {
	stopChan chan struct{}
	manager  *Manager

	mu      sync.Mutex
	player  *oto.Player
	target  float64
	stopped bool
}

func (h *Handle) playLoop(pcm []byte, fadeIn time.Duration) {
	defer h.manager.release(h)

	start := time.Now()

	// Loop the alarm sound until stopped
	for {
		h.mu.Lock()
		if h.stopped {
			h.mu.Unlock()
			return
		}
		h.player = globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
		h.player.SetVolume(h.currentVolume(start, fadeIn))
		h.player.Play()
		player := h.player
		h.mu.Unlock()

		for player.IsPlaying() {
			select {
			case <-h.stopChan:
				player.Pause()
				player.Close()
				return
			case <-time.After(50 * time.Millisecond):
				player.SetVolume(h.currentVolume(start, fadeIn))
			}
		}

		if err := player.Close(); err != nil {
			h.manager.log.Warn("failed to close audio player", zap.Error(err))
		}

		select {
		case <-h.stopChan:
			return
		default:
		}
	}
}

// currentVolume applies the fade-in ramp against the target volume.
func (h *Handle) currentVolume(start time.Time, fadeIn time.Duration) float64 {
	h.mu.Lock()
	target := h.target
	h.mu.Unlock()

	if fadeIn <= 0 {
		return target
	}
	elapsed := time.Since(start)
	if elapsed >= fadeIn {
		return target
	}
	return target * float64(elapsed) / float64(fadeIn)
}

// SetVolume changes the playback volume target (0-1). Used by the mute
// toggle while an alarm is ringing.
func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = clampVolume(v)
	if h.player != nil {
		h.player.SetVolume(h.target)
	}
}

// Stop ends the playback loop. Safe to call more than once.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	close(h.stopChan)
	if h.player != nil {
		h.player.Pause()
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parseWAV parses a WAV file and returns the format and audio data.
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	riff := make([]byte, 4)
	if _, err := reader.Read(riff); err != nil {
		return nil, nil, err
	}
	if string(riff) != "RIFF" {
		return nil, nil, fmt.Errorf("not a RIFF file")
	}

	// Skip file size
	reader.Seek(4, io.SeekCurrent)

	wave := make([]byte, 4)
	if _, err := reader.Read(wave); err != nil {
		return nil, nil, err
	}
	if string(wave) != "WAVE" {
		return nil, nil, fmt.Errorf("not a WAVE file")
	}

	format := &wavFormat{}
	var dataStart int64
	var dataSize uint32

	for {
		chunkID := make([]byte, 4)
		if _, err := reader.Read(chunkID); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, err
		}

		switch string(chunkID) {
		case "fmt ":
			var audioFormat uint16
			binary.Read(reader, binary.LittleEndian, &audioFormat)

			var numChannels uint16
			binary.Read(reader, binary.LittleEndian, &numChannels)
			format.Channels = int(numChannels)

			var sampleRate uint32
			binary.Read(reader, binary.LittleEndian, &sampleRate)
			format.SampleRate = int(sampleRate)

			// Skip byte rate and block align
			reader.Seek(6, io.SeekCurrent)

			var bitsPerSample uint16
			binary.Read(reader, binary.LittleEndian, &bitsPerSample)
			format.BitDepth = int(bitsPerSample)

			// Skip any extra format bytes
			if remaining := chunkSize - 16; remaining > 0 {
				reader.Seek(int64(remaining), io.SeekCurrent)
			}
		case "data":
			dataStart, _ = reader.Seek(0, io.SeekCurrent)
			dataSize = chunkSize
		default:
			reader.Seek(int64(chunkSize), io.SeekCurrent)
		}

		if dataSize > 0 {
			break
		}
	}

	if dataSize == 0 || format.SampleRate == 0 {
		return nil, nil, fmt.Errorf("missing fmt or data chunk")
	}

	audioData := make([]byte, dataSize)
	reader.Seek(dataStart, io.SeekStart)
	if _, err := io.ReadFull(reader, audioData); err != nil {
		return nil, nil, err
	}

	return format, audioData, nil
}
