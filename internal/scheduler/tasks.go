// Package scheduler runs the periodic leak digest through asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskDigestSweep enumerates organizations and fans out per-org digests.
const TaskDigestSweep = "analysis.digest.sweep"

// TaskAnalysisDigest builds and emails the digest for one organization.
const TaskAnalysisDigest = "analysis.digest"

type AnalysisDigestPayload struct {
	OrganizationID string `json:"organizationId"`
	Recipient      string `json:"recipient"`
}

func NewDigestSweepTask() *asynq.Task {
	return asynq.NewTask(TaskDigestSweep, nil)
}

func NewAnalysisDigestTask(payload AnalysisDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalysisDigest, data), nil
}

func ParseAnalysisDigestPayload(task *asynq.Task) (AnalysisDigestPayload, error) {
	var payload AnalysisDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AnalysisDigestPayload{}, err
	}
	return payload, nil
}
