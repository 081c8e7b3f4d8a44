// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracker

import "fmt"

// State is a lifecycle state of a tracked transaction. Ids increase along
// the lifecycle.
type State struct {
	Id   uint
	Name string
}

func NewState(id uint, name string) State {
	return State{
		Id:   id,
		Name: name,
	}
}

func (s State) String() string {
	return s.Name
}

var (
	StateSubmitted        = NewState(1, "Submitted")
	StatePoolAccepted     = NewState(2, "PoolAccepted")
	StateIncludedInBlock  = NewState(3, "IncludedInBlock")
	StateFinalized        = NewState(4, "Finalized")
	StateInvalid          = NewState(5, "Invalid")
	StateDroppedOrUsurped = NewState(6, "DroppedOrUsurped")
)

type Status uint8

const (
	StatusSubmitted Status = iota + 1
	StatusPoolAccepted
	StatusIncludedInBlock
	// StatusRetracted reports that the including block left the best chain
	StatusRetracted
	StatusFinalized
	StatusInvalid
	StatusDroppedOrUsurped
)

func (s Status) String() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusPoolAccepted:
		return "PoolAccepted"
	case StatusIncludedInBlock:
		return "IncludedInBlock"
	case StatusRetracted:
		return "Retracted"
	case StatusFinalized:
		return "Finalized"
	case StatusInvalid:
		return "Invalid"
	case StatusDroppedOrUsurped:
		return "DroppedOrUsurped"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

type StateTransition struct {
	Status   Status
	NewState State
}

type StateMapEntry struct {
	Terminal    bool
	Transitions []StateTransition
}

type StateMap map[State]StateMapEntry

// Copy returns a copy of the state map
func (s StateMap) Copy() StateMap {
	ret := StateMap{}
	for k, v := range s {
		ret[k] = v
	}
	return ret
}

// Next returns the state reached by applying a status in the given state
func (s StateMap) Next(from State, status Status) (State, bool) {
	entry, ok := s[from]
	if !ok {
		return State{}, false
	}
	for _, t := range entry.Transitions {
		if t.Status == status {
			return t.NewState, true
		}
	}
	return State{}, false
}

func (s StateMap) IsTerminal(state State) bool {
	return s[state].Terminal
}

var failureTransitions = []StateTransition{
	{
		Status:   StatusInvalid,
		NewState: StateInvalid,
	},
	{
		Status:   StatusDroppedOrUsurped,
		NewState: StateDroppedOrUsurped,
	},
}

// Transaction lifecycle state machine. Statuses may skip forward but never
// move back to an earlier state.
var LifecycleStateMap = StateMap{
	StateSubmitted: StateMapEntry{
		Transitions: append([]StateTransition{
			{
				Status:   StatusSubmitted,
				NewState: StateSubmitted,
			},
			{
				Status:   StatusPoolAccepted,
				NewState: StatePoolAccepted,
			},
			{
				Status:   StatusIncludedInBlock,
				NewState: StateIncludedInBlock,
			},
			{
				Status:   StatusFinalized,
				NewState: StateFinalized,
			},
		}, failureTransitions...),
	},
	StatePoolAccepted: StateMapEntry{
		Transitions: append([]StateTransition{
			{
				Status:   StatusPoolAccepted,
				NewState: StatePoolAccepted,
			},
			{
				Status:   StatusIncludedInBlock,
				NewState: StateIncludedInBlock,
			},
			{
				Status:   StatusFinalized,
				NewState: StateFinalized,
			},
		}, failureTransitions...),
	},
	StateIncludedInBlock: StateMapEntry{
		Transitions: append([]StateTransition{
			{
				Status:   StatusIncludedInBlock,
				NewState: StateIncludedInBlock,
			},
			{
				Status:   StatusRetracted,
				NewState: StateIncludedInBlock,
			},
			{
				Status:   StatusFinalized,
				NewState: StateFinalized,
			},
		}, failureTransitions...),
	},
	StateFinalized: StateMapEntry{
		Terminal: true,
	},
	StateInvalid: StateMapEntry{
		Terminal: true,
	},
	StateDroppedOrUsurped: StateMapEntry{
		Terminal: true,
	},
}
