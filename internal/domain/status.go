package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status lifecycle shared by Order and CustomOrder
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Party side of an order the viewer is on
type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

// Transition one allowed edge of the lifecycle and who may trigger it
type Transition struct {
	From Status
	To   Status
	By   Party
}

// transitions is the only place the lifecycle is defined.
var transitions = []Transition{
	{From: StatusPending, To: StatusConfirmed, By: PartySeller},
	{From: StatusPending, To: StatusCancelled, By: PartySeller},
	{From: StatusConfirmed, To: StatusDelivered, By: PartySeller},
}

// Statuses lists every status in lifecycle order
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled}
}

// Transitions returns a copy of the transition table
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// ParseStatus accepts any letter case; unknown values are rejected
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether party may move an order from s to to
func (s Status) CanTransition(to Status, by Party) bool {
	for _, t := range transitions {
		if t.From == s && t.To == to && t.By == by {
			return true
		}
	}
	return false
}

// Next lists the statuses party may move s to
func (s Status) Next(by Party) []Status {
	var out []Status
	for _, t := range transitions {
		if t.From == s && t.By == by {
			out = append(out, t.To)
		}
	}
	return out
}

func (s Status) String() string { return string(s) }

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
