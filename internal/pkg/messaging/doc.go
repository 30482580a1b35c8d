// Package messaging publishes and consumes events over NATS, NSQ, Kafka or
// Google Pub/Sub behind one small interface. An in-process broker backs local
// runs and tests.
//
// Delivery is at least once: a handler returning nil acknowledges the message,
// an error asks the broker to redeliver it.
package messaging
