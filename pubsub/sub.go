package pubsub

import "sync"

type ClientID string

type subscriber struct {
	clientID ClientID
	pub      *Publisher
	handlers map[Topic]Handler
	wg       *sync.WaitGroup
}

func (publisher *Publisher) NewSubscriber(clientID ClientID) (*subscriber, error) {
	publisher.mtx.Lock()
	defer publisher.mtx.Unlock()
	if _, ok := publisher.subscribers[clientID]; ok {
		return nil, ErrDuplicateClientID
	}
	s := &subscriber{
		clientID: clientID,
		pub:      publisher,
		handlers: make(map[Topic]Handler),
		wg:       &sync.WaitGroup{},
	}
	publisher.subscribers[clientID] = make(map[Topic]struct{})
	return s, nil
}

func (s *subscriber) Subscribe(topic Topic, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	if s.pub.HasSubscribed(s.clientID, topic) {
		return ErrAlreadySubscribed
	}

	s.handlers[topic] = handler

	select {
	case s.pub.cmds <- cmd{op: sub, topic: topic, subscriber: s, clientID: s.clientID}:
		s.pub.mtx.Lock()
		if _, ok := s.pub.subscribers[s.clientID]; !ok {
			s.pub.subscribers[s.clientID] = make(map[Topic]struct{})
		}
		s.pub.subscribers[s.clientID][topic] = struct{}{}
		s.pub.mtx.Unlock()
		return nil
	case <-s.pub.Quit():
		return nil
	}
}

func (s *subscriber) Unsubscribe(topic Topic) error {
	if !s.pub.HasSubscribed(s.clientID, topic) {
		return ErrSubscriptionNotFound
	}

	select {
	case s.pub.cmds <- cmd{op: unsub, topic: topic, clientID: s.clientID}:
		s.pub.mtx.Lock()
		delete(s.pub.subscribers[s.clientID], topic)
		s.pub.mtx.Unlock()
		delete(s.handlers, topic)
		return nil
	case <-s.pub.Quit():
		return nil
	}
}

// Wait blocks until every handler dispatched so far has returned.
func (s *subscriber) Wait() {
	s.wg.Wait()
}
