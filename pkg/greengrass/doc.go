// Package greengrass connects a device to a Greengrass core.
//
// A Client asks the cloud discovery service which cores serve its thing,
// selects one connectivity interface from the answer and opens an MQTT
// session to it, trusting the group CA that came with the document:
//
//	c, err := greengrass.NewClient(cfg)
//	if err != nil { ... }
//	defer c.Close()
//
//	if err := c.DiscoverAndConnect(ctx); err != nil { ... }
//	err = c.Subscribe(ctx, "sensors/+/cmd", func(topic string, payload []byte) { ... })
//	err = c.Publish(ctx, "sensors/1/temp", `{"c":21.5}`)
//
// ConnectToCloud skips discovery and talks to the IoT cloud broker directly.
//
// With Config.Rediscover set, a lost core connection is not retried against
// the same address. The client fetches a new discovery document, since the
// core may have moved, and reconnects in the background with backoff.
// Subscriptions are restored on every new connection.
package greengrass
