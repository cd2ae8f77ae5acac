package mqtt

// Publisher announces finished scheduling runs to MQTT subscribers such as a
// club dashboard.
type Publisher interface {
	// PublishRun sends the JSON summary of a run under the run's topic.
	PublishRun(runID string, payload []byte) error
	// Close disconnects from the broker.
	Close()
}
