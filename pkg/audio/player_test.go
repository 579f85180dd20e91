package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV assembles a minimal PCM WAV file around the given sample data.
func buildWAV(sampleRate int, channels int, bitDepth int, samples []byte) []byte {
	var buf bytes.Buffer
	blockAlign := channels * bitDepth / 8
	byteRate := sampleRate * blockAlign

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(samples)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(samples)))
	buf.Write(samples)

	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	samples := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	wav := buildWAV(44100, 2, 16, samples)

	format, pcm, err := parseWAV(wav)
	require.NoError(t, err)
	assert.Equal(t, 44100, format.SampleRate)
	assert.Equal(t, 2, format.Channels)
	assert.Equal(t, 16, format.BitDepth)
	assert.Equal(t, samples, pcm)
}

func TestParseWAVSkipsUnknownChunks(t *testing.T) {
	samples := []byte{0xAA, 0xBB}
	wav := buildWAV(22050, 1, 16, samples)

	// Splice a LIST chunk between fmt and data.
	extra := append([]byte("LIST"), 0x04, 0x00, 0x00, 0x00, 'I', 'N', 'F', 'O')
	spliced := append(append(append([]byte{}, wav[:36]...), extra...), wav[36:]...)
	binary.LittleEndian.PutUint32(spliced[4:], uint32(len(spliced)-8))

	format, pcm, err := parseWAV(spliced)
	require.NoError(t, err)
	assert.Equal(t, 22050, format.SampleRate)
	assert.Equal(t, 1, format.Channels)
	assert.Equal(t, samples, pcm)
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	_, _, err := parseWAV([]byte("OggS this is not a wav"))
	assert.Error(t, err)

	_, _, err = parseWAV(buildWAV(44100, 2, 16, nil))
	assert.Error(t, err, "a data chunk of size zero is unusable")

	riffButNotWave := append([]byte("RIFF"), 0, 0, 0, 0, 'A', 'V', 'I', ' ')
	_, _, err = parseWAV(riffButNotWave)
	assert.Error(t, err)
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0.0, clampVolume(-0.5))
	assert.Equal(t, 0.5, clampVolume(0.5))
	assert.Equal(t, 1.0, clampVolume(1.5))
}

func TestCurrentVolumeFadeIn(t *testing.T) {
	h := &Handle{target: 0.8}

	start := time.Now()
	assert.Equal(t, 0.8, h.currentVolume(start, 0), "no fade means immediate full volume")

	longAgo := start.Add(-time.Hour)
	assert.Equal(t, 0.8, h.currentVolume(longAgo, 30*time.Second), "fade finished")

	mid := h.currentVolume(start.Add(-15*time.Second), 30*time.Second)
	assert.Greater(t, mid, 0.3)
	assert.Less(t, mid, 0.5)
}

func TestHandleStopIsIdempotent(t *testing.T) {
	h := &Handle{stopChan: make(chan struct{})}
	h.Stop()
	h.Stop()
	assert.True(t, h.stopped)

	var nilHandle *Handle
	nilHandle.Stop()
}
