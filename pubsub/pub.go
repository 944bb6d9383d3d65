package pubsub

import (
	"errors"
	"sync"

	"github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	// ErrDuplicateClientID is returned when a client tries to register
	// with an existing client ID.
	ErrDuplicateClientID = errors.New("clientID already exists")

	// ErrAlreadySubscribed is returned when a client subscribes to the
	// same topic twice.
	ErrAlreadySubscribed = errors.New("already subscribed")

	// ErrSubscriptionNotFound is returned when a client unsubscribes
	// from a topic it never subscribed to.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	ErrNilHandler = errors.New("handler is nil")
)

type operation int

const (
	sub operation = iota
	pub
	unsub
	shutdown
)

type cmd struct {
	op operation

	// subscribe, unsubscribe
	topic      Topic
	subscriber *subscriber
	clientID   ClientID

	// publish
	event Event
}

// Publisher fans committed-state events out to subscribers. All
// bookkeeping runs on a single command loop, so handlers observe
// events in publish order per topic.
type Publisher struct {
	common.BaseService
	name string

	cmds chan cmd

	subscribers   map[ClientID]map[Topic]struct{}    // clientID -> topic -> empty struct
	subscriptions map[Topic]map[ClientID]*subscriber // topic -> clientID -> subscriber

	mtx sync.RWMutex
}

func NewPublisher(name string, logger log.Logger) *Publisher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	publisher := &Publisher{
		name:        name,
		cmds:        make(chan cmd),
		subscribers: make(map[ClientID]map[Topic]struct{}),
	}
	publisher.BaseService = *common.NewBaseService(logger, name, publisher)
	return publisher
}

func (publisher *Publisher) OnStart() error {
	publisher.subscriptions = make(map[Topic]map[ClientID]*subscriber)
	go publisher.loop()
	return nil
}

func (publisher *Publisher) OnStop() {
	publisher.cmds <- cmd{op: shutdown}
}

func (publisher *Publisher) HasSubscribed(clientID ClientID, topic Topic) bool {
	publisher.mtx.RLock()
	defer publisher.mtx.RUnlock()
	subs, ok := publisher.subscribers[clientID]
	if !ok {
		return ok
	}
	if len(topic) != 0 {
		_, ok = subs[topic]
	}
	return ok
}

func (publisher *Publisher) Publish(e Event) {
	if !publisher.IsRunning() {
		return
	}
	select {
	case publisher.cmds <- cmd{op: pub, event: e}:
		return
	case <-publisher.Quit():
		return
	}
}

func (publisher *Publisher) loop() {
loop:
	for cmd := range publisher.cmds {
		switch cmd.op {
		case unsub:
			if len(cmd.topic) != 0 {
				publisher.remove(cmd.clientID, cmd.topic)
			} else {
				publisher.removeClient(cmd.clientID)
			}
		case shutdown:
			publisher.removeAll()
			break loop
		case sub:
			if _, ok := publisher.subscriptions[cmd.topic]; !ok {
				publisher.subscriptions[cmd.topic] = make(map[ClientID]*subscriber)
			}
			publisher.subscriptions[cmd.topic][cmd.clientID] = cmd.subscriber
		case pub:
			publisher.push(cmd.event)
		}
	}
}

func (publisher *Publisher) push(event Event) {
	for _, s := range publisher.subscriptions[event.GetTopic()] {
		s.wg.Add(1)
		go func(s *subscriber) {
			s.handlers[event.GetTopic()](event)
			s.wg.Done()
		}(s)
	}
}

func (publisher *Publisher) removeClient(clientID ClientID) {
	for topic, clientSubscriptions := range publisher.subscriptions {
		if _, ok := clientSubscriptions[clientID]; ok {
			publisher.remove(clientID, topic)
		}
	}
}

func (publisher *Publisher) removeAll() {
	for topic, clientSubscriptions := range publisher.subscriptions {
		for clientID := range clientSubscriptions {
			publisher.remove(clientID, topic)
		}
	}
}

func (publisher *Publisher) remove(clientID ClientID, topic Topic) {
	clientSubscriptions, ok := publisher.subscriptions[topic]
	if !ok {
		return
	}
	if _, ok = clientSubscriptions[clientID]; !ok {
		return
	}
	// remove client from topic map.
	// if topic has no other clients subscribed, remove it.
	delete(publisher.subscriptions[topic], clientID)
	if len(publisher.subscriptions[topic]) == 0 {
		delete(publisher.subscriptions, topic)
	}
}
