package eventbus

// Global topic declarations. Kept in one place so they can later be moved
// into configuration.

var (
	TopicAnalysisEvents = NewTopic("clauseguard.analysis.events")
)

var AllTopics = []Topic{
	TopicAnalysisEvents,
}
