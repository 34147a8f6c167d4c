package event

// Type identifies the kind of notification carried by an Event.
type Type int

// Event kinds, in rough lifecycle order.
const (
	TypeConnected Type = iota
	TypeConnectionLost
	TypeMessageArrived
	TypeDeliveryComplete
	TypeSubscribeSucceeded
	TypeSubscribeFailed
	TypePublishSucceeded
	TypePublishFailed
	TypeError
)

// String returns a human-readable name for the event type.
func (t Type) String() string {
	switch t {
	case TypeConnected:
		return "connected"
	case TypeConnectionLost:
		return "connection_lost"
	case TypeMessageArrived:
		return "message_arrived"
	case TypeDeliveryComplete:
		return "delivery_complete"
	case TypeSubscribeSucceeded:
		return "subscribe_succeeded"
	case TypeSubscribeFailed:
		return "subscribe_failed"
	case TypePublishSucceeded:
		return "publish_succeeded"
	case TypePublishFailed:
		return "publish_failed"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a notification produced by the session or by engine callbacks
// and consumed from the queue by the application loop.
//
// Events are immutable once constructed. Ownership transfers to the queue
// on Push and to the receiver on Pop.
//
// Field population depends on Type:
//   - Topic/Payload/QoS: message arrival and subscribe/publish outcomes
//   - Detail: free-text cause for losses, failures and errors
//   - Token: delivery confirmation correlation id
type Event struct {
	Type    Type
	Topic   string
	Payload []byte
	QoS     byte
	Detail  string
	Token   uint16
}
