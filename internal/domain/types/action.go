package types

// Log actions attached to the log context with wrap.WithAction.
const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionPersistenceRetryExhausted = "persistence_retry_exhausted"
	ActionPublishFailed             = "publish_failed"

	ActionPingAccepted  = "ping_accepted"
	ActionPingDropped   = "ping_dropped"
	ActionAlertRaised   = "alert_raised"
	ActionAlertResolved = "alert_resolved"
	ActionStaleSweep    = "staleness_sweep"

	ActionDeliveryCreated    = "delivery_created"
	ActionDeliveryBound      = "delivery_bound"
	ActionDeliveryTransition = "delivery_transition"
	ActionTransitionRejected = "delivery_transition_rejected"

	ActionPipelineFlush   = "pipeline_flush"
	ActionPipelineDropped = "pipeline_event_dropped"
)
