package events

// JobEvent records one staged-progress transition of a generation job.
type JobEvent struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// SimulationEvent records one lifecycle transition of a simulation run.
type SimulationEvent struct {
	SimulationID string `json:"simulation_id"`
	ThreadID     string `json:"thread_id,omitempty"`
	Status       string `json:"status"`
	CurrentTurn  int    `json:"current_turn"`
	Error        string `json:"error,omitempty"`
}
