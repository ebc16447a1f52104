package player

import (
	appevents "github.com/rescp17/tunePlayer/internal/app_events"
	"github.com/rescp17/tunePlayer/pkg/app"
)

// CounterVM handles Increase and Decrease.
type CounterVM struct{}

func (CounterVM) OnEvent(cx *app.Context[appevents.AppEvent], e appevents.AppEvent) error {
	switch e.(type) {
	case appevents.Increase:
		c := app.ModelMut[Counter](cx)
		defer c.Release()
		c.Get().N++
	case appevents.Decrease:
		c := app.ModelMut[Counter](cx)
		defer c.Release()
		c.Get().N--
	}
	return nil
}
