package match

import (
	"encoding/json"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/geometry"
)

// RegisterName identifies one of a mech's three general-purpose slots.
type RegisterName string

const (
	RegisterEAX RegisterName = "EAX"
	RegisterEBX RegisterName = "EBX"
	RegisterECX RegisterName = "ECX"
)

// RegisterOp is the operation requested against a register by
// RegisterUpdate. Exactly one of the Number/Text fields is meaningful,
// selected by Kind.
type RegisterOpKind uint8

const (
	RegisterSet RegisterOpKind = iota
	RegisterAccumulate
	RegisterDecrement
)

var registerOpKindNames = [...]string{"Set", "Accumulate", "Decrement"}

func (k RegisterOpKind) String() string {
	if int(k) < len(registerOpKindNames) {
		return registerOpKindNames[k]
	}
	return "Unknown"
}

func (k RegisterOpKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *RegisterOpKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range registerOpKindNames {
		if n == name {
			*k = RegisterOpKind(i)
			return nil
		}
	}
	return fmt.Errorf("match: unknown register op kind %q", name)
}

type RegisterOp struct {
	Kind   RegisterOpKind `json:"kind"`
	Number uint64         `json:"number,omitempty"`
	Text   string         `json:"text,omitempty"`
}

// CommandKind tags the closed set of commands a mech may submit.
type CommandKind uint8

const (
	CommandSpawnMech CommandKind = iota
	CommandMove
	CommandFirePrimary
	CommandFireSecondary
	CommandRequestRadarScan
	CommandFinishTurn
	CommandRegisterUpdate
)

var commandKindNames = [...]string{
	"SpawnMech", "Move", "FirePrimary", "FireSecondary",
	"RequestRadarScan", "FinishTurn", "RegisterUpdate",
}

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "Unknown"
}

func (k CommandKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *CommandKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range commandKindNames {
		if n == name {
			*k = CommandKind(i)
			return nil
		}
	}
	return fmt.Errorf("match: unknown command kind %q", name)
}

// ActionPoints returns the AP cost of the command kind.
func (k CommandKind) ActionPoints() int {
	switch k {
	case CommandMove:
		return 1
	case CommandFirePrimary:
		return 2
	case CommandFireSecondary:
		return 4
	case CommandRequestRadarScan:
		return 1
	default: // SpawnMech, FinishTurn, RegisterUpdate
		return 0
	}
}

// MechCommand is the tagged union of actions a mech may submit in a
// turn. Only the fields relevant to Kind are populated by callers; the
// rest are zero.
type MechCommand struct {
	Kind CommandKind `json:"kind"`
	Mech string      `json:"mech"`

	// Move / FirePrimary / FireSecondary / RequestRadarScan share Dir.
	Dir geometry.Direction `json:"dir,omitempty"`

	// SpawnMech
	Position geometry.Point `json:"position,omitzero"`
	Team     string         `json:"team,omitempty"`
	Avatar   string         `json:"avatar,omitempty"`
	Name     string         `json:"name,omitempty"`

	// FinishTurn
	Turn uint64 `json:"turn,omitempty"`

	// RegisterUpdate
	Register RegisterName `json:"register,omitempty"`
	Op       RegisterOp   `json:"op,omitzero"`
}

func Move(mech string, dir geometry.Direction) MechCommand {
	return MechCommand{Kind: CommandMove, Mech: mech, Dir: dir}
}

func FirePrimary(mech string, dir geometry.Direction) MechCommand {
	return MechCommand{Kind: CommandFirePrimary, Mech: mech, Dir: dir}
}

func FireSecondary(mech string, dir geometry.Direction) MechCommand {
	return MechCommand{Kind: CommandFireSecondary, Mech: mech, Dir: dir}
}

func RequestRadarScan(mech string) MechCommand {
	return MechCommand{Kind: CommandRequestRadarScan, Mech: mech}
}

func FinishTurn(mech string, turn uint64) MechCommand {
	return MechCommand{Kind: CommandFinishTurn, Mech: mech, Turn: turn}
}

func SpawnMech(mech string, pos geometry.Point, team, avatar, name string) MechCommand {
	return MechCommand{Kind: CommandSpawnMech, Mech: mech, Position: pos, Team: team, Avatar: avatar, Name: name}
}

func UpdateRegister(mech string, reg RegisterName, op RegisterOp) MechCommand {
	return MechCommand{Kind: CommandRegisterUpdate, Mech: mech, Register: reg, Op: op}
}
