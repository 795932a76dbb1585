// Package cue plays short synthesized tones when the provider connection is
// lost or restored, so the user notices while the overlay is hidden.
//
// Maintenance notes:
//   - Tones are generated, not decoded, so the package ships no assets.
//   - speaker.Init may fail on machines without an audio device; Cues then
//     stays silent and logs once.
package cue

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
)

const (
	SampleRate beep.SampleRate = 44100
	amplitude                  = 0.25
	noteLength                 = 120 * time.Millisecond
)

// Tone frequencies in Hz.
const (
	noteLow  = 523.25 // C5
	noteHigh = 783.99 // G5
)

// Cues tracks the last seen connection state and plays a cue on changes.
type Cues struct {
	mu      sync.Mutex
	play    func(beep.Streamer)
	last    bool
	primed  bool
	enabled bool
}

// New initializes the speaker. When enabled is false or no audio device is
// available the returned Cues is silent.
func New(enabled bool) *Cues {
	c := &Cues{enabled: enabled}
	if !enabled {
		return c
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		logrus.WithError(err).Warn("audio disabled: failed to initialize speaker")
		c.enabled = false
		return c
	}
	c.play = func(s beep.Streamer) { speaker.Play(s) }
	return c
}

// Observe records the connection state and plays a cue when it flips. The
// first observation only primes the state.
func (c *Cues) Observe(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.primed {
		c.primed, c.last = true, connected
		return
	}
	if connected == c.last {
		return
	}
	c.last = connected
	if !c.enabled || c.play == nil {
		return
	}
	if connected {
		c.play(Restored())
	} else {
		c.play(Lost())
	}
}

// Lost is a falling two-note cue.
func Lost() beep.Streamer {
	return beep.Seq(Tone(noteHigh, noteLength), Tone(noteLow, noteLength))
}

// Restored is a rising two-note cue.
func Restored() beep.Streamer {
	return beep.Seq(Tone(noteLow, noteLength), Tone(noteHigh, noteLength))
}

// Tone returns a sine wave of freq Hz lasting d, with a short linear fade
// at both ends to avoid clicks.
func Tone(freq float64, d time.Duration) beep.Streamer {
	total := SampleRate.N(d)
	fade := SampleRate.N(5 * time.Millisecond)
	step := 2 * math.Pi * freq / float64(SampleRate)
	pos := 0

	sine := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			gain := amplitude
			if pos < fade {
				gain *= float64(pos) / float64(fade)
			} else if rem := total - pos; rem < fade {
				gain *= float64(rem) / float64(fade)
			}
			v := math.Sin(step*float64(pos)) * gain
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	})
	return beep.Take(total, sine)
}
