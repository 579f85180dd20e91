package main

import (
	"time"

	"dreamclock/pkg/audio"
	"dreamclock/pkg/session"
)

// audioAdapter bridges the concrete oto-backed manager to the session
// collaborator interface.
type audioAdapter struct {
	m *audio.Manager
}

func (a audioAdapter) PlayBuiltIn(name string, volume float64, fadeIn time.Duration) (session.PlaybackHandle, error) {
	return a.m.PlayBuiltIn(name, volume, fadeIn)
}

func (a audioAdapter) PlayCustom(wavData []byte, volume float64, fadeIn time.Duration) (session.PlaybackHandle, error) {
	return a.m.PlayCustom(wavData, volume, fadeIn)
}

func (a audioAdapter) StopAll() {
	a.m.StopAll()
}
