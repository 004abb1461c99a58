package core

import (
	"fmt"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
)

// AttachError reports a failed attach of one container.
type AttachError struct {
	ContainerId string
	Stage       string // "inspect" or "connect"
	Err         error
}

func NewAttachError(containerId, stage string, err error) *AttachError {
	return &AttachError{ContainerId: containerId, Stage: stage, Err: err}
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach %s failed at %s: %v", e.ContainerId, e.Stage, e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

// IsAlreadyAttached reports whether err is the daemon rejecting a connect
// because the container already has an endpoint on the network. Docker
// answers 403 Forbidden with "endpoint with name ... already exists"; other
// runtimes use a conflict. A 403 for any other reason is not a duplicate.
func IsAlreadyAttached(err error) bool {
	if err == nil {
		return false
	}
	if cerrdefs.IsConflict(err) || cerrdefs.IsAlreadyExists(err) {
		return true
	}
	return cerrdefs.IsPermissionDenied(err) && strings.Contains(err.Error(), "already exists")
}
