package lib

import "github.com/ethereum/go-ethereum/event"

// Subscription delivers decoded events until unsubscribed or the producer fails
type Subscription struct {
	event.Subscription
	ch <-chan interface{}
}

func NewSubscription(producer func(quit <-chan struct{}) error, ch <-chan interface{}) *Subscription {
	return &Subscription{
		Subscription: event.NewSubscription(producer),
		ch:           ch,
	}
}

func (s *Subscription) Events() <-chan interface{} {
	return s.ch
}
