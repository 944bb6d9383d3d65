package pubsub

// Topic groups related events. Modules declare their own topics next to
// their event types.
type Topic string

// Event is anything a module publishes after a committed state
// transition.
type Event interface {
	GetTopic() Topic
}

// Handler consumes events of a subscribed topic.
type Handler func(Event)
