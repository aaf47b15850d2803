package service

import (
	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type fanOut []outbound.EventPublisher

// FanOut delivers every event to each non-nil publisher, in order
func FanOut(publishers ...outbound.EventPublisher) outbound.EventPublisher {
	f := make(fanOut, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			f = append(f, p)
		}
	}
	return f
}

func (f fanOut) Publish(event model.Event) {
	for _, p := range f {
		p.Publish(event)
	}
}

// StatsRecorder adapts a stats service to the publisher port
type StatsRecorder struct {
	Stats interface{ RecordEvent(model.Event) }
}

func (r StatsRecorder) Publish(event model.Event) {
	r.Stats.RecordEvent(event)
}

func publish(p outbound.EventPublisher, t model.EventType, id, source string, data any) {
	if p == nil {
		return
	}
	p.Publish(model.NewEvent(t, id, source, data))
}
