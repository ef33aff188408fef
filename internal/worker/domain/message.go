package domain

import (
	"github.com/cuongbtq/solosphere-be/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityMessage is a decoded event together with the delivery it came in
// on, so the pool can acknowledge it once processed
type ActivityMessage struct {
	Event    events.Event
	Delivery amqp.Delivery
}
