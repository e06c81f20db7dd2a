package bus

import (
	"encoding/json"
	"errors"
)

var (
	ErrClosed        = errors.New("bus closed")
	ErrTopicRequired = errors.New("topic is required")
)

// Message is one inbound publication on a topic.
type Message struct {
	Topic string
	Data  []byte
}

// Handler consumes one message. Delivery is fire-and-forget: there is no
// return value and no reply correlation at this layer.
type Handler func(msg Message)

type Subscription interface {
	Unsubscribe() error
}

// Bus is the pub/sub collaborator the runtime depends on. Implementations
// must tolerate concurrent Subscribe/Publish/Close calls.
type Bus interface {
	Subscribe(topic string, h Handler) (Subscription, error)
	Publish(topic string, data []byte) error
	Close() error
}

// PublishJSON marshals v and publishes it to topic.
func PublishJSON[T any](b Bus, topic string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Publish(topic, data)
}

// Decode unmarshals a message payload into T.
func Decode[T any](msg Message) (out T, err error) {
	err = json.Unmarshal(msg.Data, &out)
	return out, err
}
