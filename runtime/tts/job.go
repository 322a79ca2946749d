package tts

// JobStatus is the lifecycle state of a RenderJob.
type JobStatus string

// Job states. A job is created pending on submission and resolves exactly once.
const (
	JobPending JobStatus = "pending"
	JobReady   JobStatus = "ready"
	JobFailed  JobStatus = "failed"
)

// RenderJob is one remote rendering request.
type RenderJob struct {
	// ID is assigned by the sounds service on submission.
	ID string

	// Text is the chunk that was submitted.
	Text string

	Status JobStatus

	// Location is set once the job is ready.
	Location string

	// Request is the payload that created the job.
	Request SoundRequest

	polls int
}

// Polls returns how many status requests have been made for the job.
func (j *RenderJob) Polls() int {
	return j.polls
}

// Done reports whether the job has left the pending state.
func (j *RenderJob) Done() bool {
	return j.Status == JobReady || j.Status == JobFailed
}

func (j *RenderJob) ready(location string) {
	j.Status = JobReady
	j.Location = location
}

func (j *RenderJob) fail() {
	j.Status = JobFailed
}

// SoundRequest is the body of a job submission.
type SoundRequest struct {
	Engine string           `json:"engine"`
	Data   SoundRequestData `json:"data"`
}

// SoundRequestData carries the text and voice of a submission.
type SoundRequestData struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// soundCreated is the body returned by a successful submission.
type soundCreated struct {
	ID string `json:"id"`
}

// soundStatus is the body returned by a status request.
type soundStatus struct {
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message,omitempty"`
}
