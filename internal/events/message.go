package events

import (
	"encoding/json"

	"github.com/martinsuchenak/devcalc/internal/model"
)

// Inbound events and the events emitted when they were sent without an ID
const (
	EventCalculateDevice  = "calculate_device"
	EventDeviceCalculated = "device_calculated"

	EventGenerateMAC  = "generate_mac"
	EventMACGenerated = "mac_generated"

	EventSampleNetwork  = "sample_network"
	EventNetworkSampled = "network_sampled"

	// EventError reports frames that could not be dispatched
	EventError = "error"
)

var completions = map[string]string{
	EventCalculateDevice: EventDeviceCalculated,
	EventGenerateMAC:     EventMACGenerated,
	EventSampleNetwork:   EventNetworkSampled,
}

// Message is a single websocket frame. A request carrying an ID is
// answered with a reply echoing the event name and ID; a request without
// one is answered with the matching completion event.
type Message struct {
	Event string          `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope is the payload of every reply
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func successEnvelope(data any) Envelope {
	return Envelope{Status: model.StatusSuccess, Data: data}
}

func errorEnvelope(message string) Envelope {
	return Envelope{Status: model.StatusError, Message: message}
}

func outcomeEnvelope(o model.Outcome) Envelope {
	if o.OK() {
		return successEnvelope(o.Data)
	}
	return errorEnvelope(o.Message)
}

// replyTo builds the frame answering req
func replyTo(req Message, payload Envelope) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reply := Message{Event: req.Event, ID: req.ID, Data: data}
	if req.ID == "" {
		if completion, ok := completions[req.Event]; ok {
			reply.Event = completion
		} else {
			reply.Event = EventError
		}
	}
	return json.Marshal(reply)
}
