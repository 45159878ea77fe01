package instance

import "github.com/prometheus/client_golang/prometheus"

type Prometheus interface {
	Register(r prometheus.Registerer)

	ConnectionOpened()
	ConnectionClosed()
	EventReceived(eventType string)
	EventRejected(eventType string, reason string)
	Delivered(n int)
	DeliveryDropped(n int)
	PresenceTransitionDropped()
	StatusesSwept(n int64)
}
