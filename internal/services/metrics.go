package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// chatSessionsStarted counts conversations opened by Start.
	chatSessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_sessions_started_total",
			Help: "Total number of chatbot conversations started.",
		},
	)

	// chatSessionsEnded counts conversations that ended, by reason:
	// completed, cancelled, or expired (message for an unknown id).
	chatSessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_sessions_ended_total",
			Help: "Total number of chatbot conversations ended, by reason.",
		},
		[]string{"reason"},
	)

	// chatMessages counts handled messages by outcome kind.
	chatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_messages_total",
			Help: "Total number of chatbot messages handled, by outcome.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(chatSessionsStarted, chatSessionsEnded, chatMessages)
}
