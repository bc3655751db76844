package match

import (
	"encoding/json"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/geometry"
)

// InitialHealth is the health every spawned mech starts at.
const InitialHealth = 1000

// RegisterValueKind tags which variant of RegisterValue is populated.
type RegisterValueKind uint8

const (
	RegisterValueNone RegisterValueKind = iota
	RegisterValueNumber
	RegisterValueText
)

var registerValueKindNames = [...]string{"None", "Number", "Text"}

func (k RegisterValueKind) String() string {
	if int(k) < len(registerValueKindNames) {
		return registerValueKindNames[k]
	}
	return "Unknown"
}

func (k RegisterValueKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *RegisterValueKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range registerValueKindNames {
		if n == name {
			*k = RegisterValueKind(i)
			return nil
		}
	}
	return fmt.Errorf("match: unknown register value kind %q", name)
}

// RegisterValue is the discriminated union Number(u64) | Text(string)
// stored in a mech's registers.
type RegisterValue struct {
	Kind   RegisterValueKind `json:"kind"`
	Number uint64            `json:"number,omitempty"`
	Text   string            `json:"text,omitempty"`
}

func NumberValue(n uint64) RegisterValue { return RegisterValue{Kind: RegisterValueNumber, Number: n} }
func TextValue(s string) RegisterValue   { return RegisterValue{Kind: RegisterValueText, Text: s} }

// MechState is one mech's complete state within a match.
type MechState struct {
	ID           string                         `json:"id"`
	Name         string                         `json:"name"`
	Avatar       string                         `json:"avatar"`
	Team         string                         `json:"team"`
	Position     geometry.Point                 `json:"position"`
	Health       uint64                         `json:"health"`
	Alive        bool                           `json:"alive"`
	RemainingAPs int                            `json:"remaining_aps"`
	Registers    map[RegisterName]RegisterValue `json:"registers"`
}

// TurnStatus tracks the current turn counter and which agents have
// already called FinishTurn this turn.
type TurnStatus struct {
	Current uint64          `json:"current"`
	Taken   map[string]bool `json:"taken"`
}

func newTurnStatus() TurnStatus {
	return TurnStatus{Taken: make(map[string]bool)}
}

// Parameters are the immutable settings a match was created with.
type Parameters struct {
	MatchID    string   `json:"match_id"`
	Actors     []string `json:"actors"` // ordering determines per-turn command scheduling
	MaxTurns   uint64   `json:"max_turns"`
	APsPerTurn int      `json:"aps_per_turn"`
}

// DefaultAPsPerTurn is the action-point budget each mech gets per turn
// when a match doesn't override it.
const DefaultAPsPerTurn = 4

// State is the full state of one match: an aggregate root folded by
// ApplyEvent. It is owned exclusively by the coordinator goroutine
// driving its match, so fields are mutated in place rather than
// through copy-on-write.
type State struct {
	Parameters Parameters             `json:"parameters"`
	Board      geometry.Board         `json:"game_board"`
	Mechs      map[string]*MechState  `json:"mechs"`
	Generation uint64                 `json:"generation"`
	Turn       TurnStatus             `json:"turn_status"`
	Completed  *EndCause              `json:"completed,omitempty"`
	RadarPings map[string][]RadarPing `json:"radar_pings"`
}

// NewState creates the initial state for a freshly created match.
func NewState(params Parameters, board geometry.Board) *State {
	return &State{
		Parameters: params,
		Board:      board,
		Mechs:      make(map[string]*MechState),
		Turn:       newTurnStatus(),
		RadarPings: make(map[string][]RadarPing),
	}
}

// mechAt returns the mech occupying p, if any.
func (s *State) mechAt(p geometry.Point) *MechState {
	for _, m := range s.Mechs {
		if m.Alive && m.Position == p {
			return m
		}
	}
	return nil
}

// AliveCount returns the number of mechs still alive.
func (s *State) AliveCount() int {
	n := 0
	for _, m := range s.Mechs {
		if m.Alive {
			n++
		}
	}
	return n
}

// AliveIDs returns the ids of every mech still alive, in map
// (non-deterministic) order; callers that need determinism must sort.
func (s *State) AliveIDs() []string {
	ids := make([]string, 0, len(s.Mechs))
	for id, m := range s.Mechs {
		if m.Alive {
			ids = append(ids, id)
		}
	}
	return ids
}

// Clone returns a deep copy of the state, used by the coordinator to
// hand each agent an isolated snapshot to act on during its turn.
func (s *State) Clone() *State {
	out := &State{
		Parameters: s.Parameters,
		Board:      s.Board,
		Generation: s.Generation,
		Mechs:      make(map[string]*MechState, len(s.Mechs)),
		RadarPings: make(map[string][]RadarPing, len(s.RadarPings)),
		Turn: TurnStatus{
			Current: s.Turn.Current,
			Taken:   make(map[string]bool, len(s.Turn.Taken)),
		},
	}
	for id, m := range s.Mechs {
		mc := *m
		mc.Registers = make(map[RegisterName]RegisterValue, len(m.Registers))
		for k, v := range m.Registers {
			mc.Registers[k] = v
		}
		out.Mechs[id] = &mc
	}
	for id, pings := range s.RadarPings {
		cp := make([]RadarPing, len(pings))
		copy(cp, pings)
		out.RadarPings[id] = cp
	}
	for id, ok := range s.Turn.Taken {
		out.Turn.Taken[id] = ok
	}
	if s.Completed != nil {
		cause := *s.Completed
		cause.Survivors = append([]string(nil), s.Completed.Survivors...)
		out.Completed = &cause
	}
	return out
}
