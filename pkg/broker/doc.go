// Package broker is the MQTT boundary of the client.
//
// Broker is what the Greengrass client needs from a message broker
// connection. MQTT implements it on Eclipse Paho (MQTT 3.1.1 over TLS);
// tests use mocks.MockBroker.
//
// Handlers are registered per subscription and receive the topic and the
// raw payload. Paho invokes them from its own goroutines, so handlers must
// not block for long.
package broker
