/*
Package events provides an in-process broker for client state changes.

The session manager, task store and directory resolver publish an
event whenever their owned state changes; interested consumers (the
CLI watch command, tests) subscribe and receive events on a buffered
channel. Delivery is best-effort: a subscriber that falls behind has
events dropped rather than blocking the publisher.
*/
package events
