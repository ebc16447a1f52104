package appevents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsSatisfyMarker(t *testing.T) {
	events := []AppEvent{
		Increase{}, Decrease{}, LoadLibrary{Dir: "/music"}, LibraryLoaded{},
		PlayTrack{Index: 2}, TogglePlay{}, NextTrack{}, PrevTrack{},
		Tick{}, StartSleepTimer{}, SleepTimerFired{Token: 1},
	}
	assert.Len(t, events, 11)

	e, ok := events[2].(LoadLibrary)
	assert.True(t, ok)
	assert.Equal(t, "/music", e.Dir)
}
