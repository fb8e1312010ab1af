package infra

// QueueName enumerates the RabbitMQ queues the service declares.
type QueueName string

const (
	// QueueNameActionLog carries audit entries from mutating panel
	// operations to the background consumer that persists them.
	QueueNameActionLog QueueName = "action_log_queue"
)

// String implements Stringer.
func (qn QueueName) String() string {
	return string(qn)
}

// GetAllQueueNames returns every declared queue name.
func GetAllQueueNames() []QueueName {
	return []QueueName{
		QueueNameActionLog,
	}
}
