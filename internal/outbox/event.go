package outbox

// Event types published by this service. Topic name equals event type.
const (
	EventBookingReceived = "booking.request.received.v1"
	EventStatusChanged   = "appointment.status.changed.v1"
)

// Event is the domain event envelope written to the outbox table in the
// same transaction as the row change it describes. Downstream consumers
// (reminder/notification systems) read these from Kafka.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
