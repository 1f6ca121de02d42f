package badge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	TaskStateChange = "ECS Task State Change"
	StatusStopped   = "STOPPED"
)

var (
	// ErrUnrecognizedEvent is returned for notifications that are not ECS
	// task state changes or that lack a container exit code.
	ErrUnrecognizedEvent = errors.New("badge: event is not an ECS task state change")

	// ErrMissingScraper is returned when no scraper name can be taken from
	// the task definition ARN.
	ErrMissingScraper = errors.New("badge: could not extract scraper name")
)

// Notification is the subset of an ECS task state change event used for badges
type Notification struct {
	DetailType string `json:"detail-type"`
	Detail     Detail `json:"detail"`
}

type Detail struct {
	LastStatus        string      `json:"lastStatus"`
	TaskDefinitionArn string      `json:"taskDefinitionArn"`
	Containers        []Container `json:"containers"`
}

type Container struct {
	Name     string `json:"name,omitempty"`
	ExitCode *int   `json:"exitCode,omitempty"`
}

// ParseNotification decodes a raw notification body.
func ParseNotification(raw []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedEvent, err)
	}
	return &n, nil
}

// Stopped reports whether the task reached its terminal state.
func (n *Notification) Stopped() bool {
	return n.Detail.LastStatus == StatusStopped
}

// ExitCode returns the exit code of the first container.
func (n *Notification) ExitCode() (int, error) {
	if len(n.Detail.Containers) == 0 || n.Detail.Containers[0].ExitCode == nil {
		return 0, fmt.Errorf("%w: no container exit code", ErrUnrecognizedEvent)
	}
	return *n.Detail.Containers[0].ExitCode, nil
}

// ScraperName extracts the task family from a task definition ARN, e.g.
// "arn:aws:ecs:us-east-1:123:task-definition/chi_zoning_board:4" yields
// "chi_zoning_board".
func ScraperName(taskDefinitionArn string) (string, error) {
	const marker = "task-definition/"

	i := strings.Index(taskDefinitionArn, marker)
	if i < 0 {
		return "", fmt.Errorf("%w from %q", ErrMissingScraper, taskDefinitionArn)
	}
	name := taskDefinitionArn[i+len(marker):]
	if j := strings.IndexByte(name, ':'); j >= 0 {
		name = name[:j]
	}
	if name == "" {
		return "", fmt.Errorf("%w from %q", ErrMissingScraper, taskDefinitionArn)
	}
	return name, nil
}

// StatusForExit maps a container exit code to a badge status.
func StatusForExit(code int) Status {
	if code == 0 {
		return StatusRunning
	}
	return StatusFailing
}
