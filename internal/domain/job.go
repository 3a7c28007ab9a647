package domain

import "time"

// Stage enumerates the job lifecycle states.
type Stage string

const (
	StageQueued             Stage = "queued"
	StageExtractingMetadata Stage = "extracting_metadata"
	StageGeneratingPrompt   Stage = "generating_prompt"
	StageGeneratingVideo    Stage = "generating_video"
	StageCompleted          Stage = "completed"
	StageFailed             Stage = "failed"

	// StageDemo is only used by the demo deployment profile.
	StageDemo Stage = "demo"
)

var stageOrder = map[Stage]int{
	StageQueued:             0,
	StageExtractingMetadata: 1,
	StageGeneratingPrompt:   2,
	StageGeneratingVideo:    3,
	StageCompleted:          4,
}

// Terminal reports whether no further transitions are allowed from s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed || s == StageDemo
}

// CanTransition reports whether a job may move from s to next. Stages only move
// forward; re-entering the current stage is allowed so callers can refresh the
// message without tracking what they set before. Failed is reachable from every
// non-terminal stage.
func (s Stage) CanTransition(next Stage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok {
		return false
	}
	return to >= from
}

// AgentStatus is the sub-status shown per pipeline agent.
type AgentStatus string

const (
	AgentStandby AgentStatus = "standby"
	AgentActive  AgentStatus = "active"
	AgentDone    AgentStatus = "done"
	AgentFailed  AgentStatus = "failed"
)

// AgentStatuses tracks the research, content and video agents of one job.
type AgentStatuses struct {
	Research AgentStatus `json:"research"`
	Content  AgentStatus `json:"content"`
	Video    AgentStatus `json:"video"`
}

// NewAgentStatuses returns all agents on standby.
func NewAgentStatuses() AgentStatuses {
	return AgentStatuses{Research: AgentStandby, Content: AgentStandby, Video: AgentStandby}
}

// AllAgents returns every agent set to status.
func AllAgents(status AgentStatus) AgentStatuses {
	return AgentStatuses{Research: status, Content: status, Video: status}
}

// LogEntry is one line of the per-job activity log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
}

// MaxJobLogs caps the number of log entries kept per job.
const MaxJobLogs = 50

// Job is one end-to-end ad generation request.
type Job struct {
	ID              string             `json:"job_id"`
	ProductURL      string             `json:"product_url"`
	Stage           Stage              `json:"stage"`
	ProgressPercent int                `json:"progress_percent"`
	Message         string             `json:"message"`
	Error           string             `json:"error,omitempty"`
	Agents          AgentStatuses      `json:"agents"`
	Logs            []LogEntry         `json:"logs"`
	Product         *ProductMetadata   `json:"product"`
	VideoPrompt     string             `json:"video_prompt,omitempty"`
	VideoPath       string             `json:"video_path,omitempty"`
	Videos          []GenerationResult `json:"videos,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Clone returns a deep copy so callers can read it without holding a lock.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.Logs = make([]LogEntry, len(j.Logs))
	copy(out.Logs, j.Logs)
	out.Videos = append([]GenerationResult(nil), j.Videos...)
	out.Warnings = append([]string(nil), j.Warnings...)
	if j.Product != nil {
		p := j.Product.Clone()
		out.Product = &p
	}
	return &out
}
