package domain

import "fmt"

type Network struct {
	Id     string
	Name   string
	Driver string
}

type EnsureStatus string

const (
	NetworkAlreadyExists EnsureStatus = "already_exists"
	NetworkCreated       EnsureStatus = "created"
)

// EnsureOutcome is the result of making sure the managed network exists.
type EnsureOutcome struct {
	Status    EnsureStatus
	NetworkId string
}

func (o EnsureOutcome) String() string {
	if o.Status == NetworkCreated {
		return fmt.Sprintf("created (id=%s)", ShortId(o.NetworkId))
	}
	return string(o.Status)
}
