package greengrass

import (
	"time"

	"github.com/ggd-protocol/ggd-go/pkg/log"
)

// thingLogger stamps the thing name on events produced by the parser.
type thingLogger struct {
	next  log.Logger
	thing string
}

func (l thingLogger) Log(e log.Event) {
	if e.ThingName == "" {
		e.ThingName = l.thing
	}
	l.next.Log(e)
}

func (c *Client) eventsWithThing() log.Logger {
	return thingLogger{next: c.events, thing: c.config.ThingName}
}

func (c *Client) emit(e log.Event) {
	e.Timestamp = time.Now()
	e.SessionID = c.sessionID
	e.ThingName = c.config.ThingName
	c.events.Log(e)
}

func (c *Client) emitError(layer log.Layer, err error, context string) {
	c.emit(log.Event{
		Layer:    layer,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	})
}

func (c *Client) emitState(state, reason, endpoint string) {
	c.emit(log.Event{
		Layer:    log.LayerBroker,
		Category: log.CategoryState,
		Endpoint: endpoint,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			NewState: state,
			Reason:   reason,
		},
	})
}

func (c *Client) emitMessage(dir log.Direction, topic string, size int) {
	c.mu.RLock()
	endpoint := c.endpoint
	c.mu.RUnlock()

	c.emit(log.Event{
		Layer:    log.LayerBroker,
		Category: log.CategoryMessage,
		Endpoint: endpoint,
		Message: &log.MessageEvent{
			Direction:   dir,
			Topic:       topic,
			PayloadSize: size,
			QoS:         uint8(c.config.QoS),
		},
	})
}
