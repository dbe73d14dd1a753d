package cycleworker

import "time"

// EventName identifies a cycle trigger on the wire.
const EventName = "tender/cycle.requested"

type CycleRequestedEventData struct {
	RequestedBy string `json:"requested_by,omitempty"`
}

type CycleRequestedEnvelope struct {
	EventName string                  `json:"event_name"`
	EventID   string                  `json:"event_id"`
	TS        time.Time               `json:"ts"`
	Data      CycleRequestedEventData `json:"data"`
}
