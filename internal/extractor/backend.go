package extractor

import (
	"context"
	"fmt"
)

// Outcome is the result of one backend attempt: either a Build ID or an
// abstention with a reason
type Outcome struct {
	BuildID string
	Reason  string
}

// Found returns an outcome carrying a Build ID
func Found(buildID string) Outcome {
	return Outcome{BuildID: buildID}
}

// Abstain returns an outcome without a Build ID
func Abstain(format string, args ...any) Outcome {
	return Outcome{Reason: fmt.Sprintf(format, args...)}
}

// OK reports whether the backend produced a Build ID
func (o Outcome) OK() bool {
	return o.BuildID != ""
}

// Backend is the interface that all Build ID extraction strategies implement
type Backend interface {
	// Name returns the backend name
	Name() string

	// Priority returns the backend priority (higher = earlier execution)
	Priority() int

	// Command returns the external tool the backend invokes, empty when the
	// backend works in-process
	Command() string

	// Extract attempts to read the Build ID of the file at path. It never
	// fails; problems are reported as an abstaining Outcome.
	Extract(ctx context.Context, path string) Outcome

	// IsEnabled returns whether this backend is enabled
	IsEnabled() bool

	// SetEnabled enables or disables this backend
	SetEnabled(enabled bool)
}

// BaseBackend provides common functionality for backends
type BaseBackend struct {
	name     string
	priority int
	command  string
	enabled  bool
}

// NewBaseBackend creates a new base backend
func NewBaseBackend(name string, priority int, command string) *BaseBackend {
	return &BaseBackend{
		name:     name,
		priority: priority,
		command:  command,
		enabled:  true,
	}
}

// Name returns the backend name
func (b *BaseBackend) Name() string {
	return b.name
}

// Priority returns the backend priority
func (b *BaseBackend) Priority() int {
	return b.priority
}

// Command returns the external tool name
func (b *BaseBackend) Command() string {
	return b.command
}

// IsEnabled returns whether this backend is enabled
func (b *BaseBackend) IsEnabled() bool {
	return b.enabled
}

// SetEnabled enables or disables this backend
func (b *BaseBackend) SetEnabled(enabled bool) {
	b.enabled = enabled
}
