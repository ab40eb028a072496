package shared

// Task types
const (
	TypeStatisticsExport          = "statistics:export"
	TypeScheduledStatisticsExport = "statistics:scheduled_export"
	TypeCleanupExports            = "statistics:cleanup_exports"
)

// Queues
const (
	QueueExport  = "export"
	QueueDefault = "default"
)
