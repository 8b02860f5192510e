package provision

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transient failure talking to an external service.
// Callers may retry the failing stage manually; nothing retries automatically.
type NetworkError struct {
	Service string // "gateway", "engine", "openai"
	Op      string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PreconditionFailedError reports a stage invoked out of order, e.g.
// provisioning a workflow before the gateway session is connected.
type PreconditionFailedError struct {
	Stage  string
	Reason string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Stage, e.Reason)
}

// ConflictError reports an HTTP 409 from an external service. Webhook
// registration treats it as an ignorable duplicate, not a failure.
type ConflictError struct {
	Service string
	Op      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s conflicted with existing configuration", e.Service, e.Op)
}

// ResourceNotFoundError reports a missing external resource. Missing gateway
// sessions trigger create-on-demand; a missing workflow is fatal to validation.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

// StorageError wraps a persistence failure. These are always surfaced so the
// caller never acts on a store that silently diverged from reality.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a NetworkError
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsPreconditionFailed reports whether err is a PreconditionFailedError
func IsPreconditionFailed(err error) bool {
	var target *PreconditionFailedError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a ResourceNotFoundError
func IsNotFound(err error) bool {
	var target *ResourceNotFoundError
	return errors.As(err, &target)
}

// IsStorage reports whether err is a StorageError
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
