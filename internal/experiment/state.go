package experiment

// State is the lifecycle state of an Experiment.
type State string

const (
	StateUnconfigured State = "unconfigured"
	StateConfigured   State = "configured"
	StateComplete     State = "complete"
)
