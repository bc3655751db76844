package match

import (
	"encoding/json"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/geometry"
)

// EventKind enumerates the closed set of events the match aggregate can
// emit. New variants must be handled by both handle_command producers
// and the apply_event projection in aggregate.go.
type EventKind uint8

const (
	EventMechSpawned EventKind = iota
	EventPositionUpdated
	EventDamageTaken
	EventMechDestroyed
	EventRadarScanCompleted
	EventActionPointsConsumed
	EventActionPointsExceeded
	EventMechTurnCompleted
	EventMatchTurnCompleted
	EventGameFinished
	EventRegisterUpdate
)

func (k EventKind) String() string {
	switch k {
	case EventMechSpawned:
		return "MechSpawned"
	case EventPositionUpdated:
		return "PositionUpdated"
	case EventDamageTaken:
		return "DamageTaken"
	case EventMechDestroyed:
		return "MechDestroyed"
	case EventRadarScanCompleted:
		return "RadarScanCompleted"
	case EventActionPointsConsumed:
		return "ActionPointsConsumed"
	case EventActionPointsExceeded:
		return "ActionPointsExceeded"
	case EventMechTurnCompleted:
		return "MechTurnCompleted"
	case EventMatchTurnCompleted:
		return "MatchTurnCompleted"
	case EventGameFinished:
		return "GameFinished"
	case EventRegisterUpdate:
		return "RegisterUpdate"
	default:
		return "Unknown"
	}
}

func (k EventKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *EventKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i := EventMechSpawned; i <= EventRegisterUpdate; i++ {
		if i.String() == name {
			*k = i
			return nil
		}
	}
	return fmt.Errorf("match: unknown event kind %q", name)
}

// DamageSourceKind tags the origin of a DamageTaken event.
type DamageSourceKind uint8

const (
	DamageFromWall DamageSourceKind = iota
	DamageFromWeapon
	DamageFromCollision
)

var damageSourceKindNames = [...]string{"Wall", "MechWeapon", "MechCollision"}

func (k DamageSourceKind) String() string {
	if int(k) < len(damageSourceKindNames) {
		return damageSourceKindNames[k]
	}
	return "Unknown"
}

func (k DamageSourceKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *DamageSourceKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range damageSourceKindNames {
		if n == name {
			*k = DamageSourceKind(i)
			return nil
		}
	}
	return fmt.Errorf("match: unknown damage source kind %q", name)
}

// DamageSource identifies what inflicted damage. Attacker is populated
// for DamageFromWeapon (the shooter's mech id); CollisionWith is
// populated for DamageFromCollision (the blocking mech's display name).
type DamageSource struct {
	Kind          DamageSourceKind `json:"kind"`
	Attacker      string           `json:"attacker,omitempty"`
	CollisionWith string           `json:"collision_with,omitempty"`
}

func WallDamage() DamageSource                     { return DamageSource{Kind: DamageFromWall} }
func WeaponDamage(attacker string) DamageSource    { return DamageSource{Kind: DamageFromWeapon, Attacker: attacker} }
func CollisionDamage(targetName string) DamageSource {
	return DamageSource{Kind: DamageFromCollision, CollisionWith: targetName}
}

// EndCauseKind tags why a match finished.
type EndCauseKind uint8

const (
	EndMechVictory EndCauseKind = iota
	EndMaxTurnsCompleted
)

var endCauseKindNames = [...]string{"MechVictory", "MaxTurnsCompleted"}

func (k EndCauseKind) String() string {
	if int(k) < len(endCauseKindNames) {
		return endCauseKindNames[k]
	}
	return "Unknown"
}

func (k EndCauseKind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *EndCauseKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range endCauseKindNames {
		if n == name {
			*k = EndCauseKind(i)
			return nil
		}
	}
	return fmt.Errorf("match: unknown end cause kind %q", name)
}

// EndCause is the reason GameFinished fired: either a lone survivor
// (MechVictory) or the turn limit (MaxTurnsCompleted, with the ids of
// every mech still alive).
type EndCause struct {
	Kind      EndCauseKind `json:"kind"`
	Victor    string       `json:"victor,omitempty"`
	Survivors []string     `json:"survivors,omitempty"`
}

// RadarPing is one observed mech in a radar scan result.
type RadarPing struct {
	Name     string         `json:"name"`
	Avatar   string         `json:"avatar"`
	Foe      bool           `json:"foe"`
	Location geometry.Point `json:"location"`
	Distance int            `json:"distance"`
}

// GameEvent is the tagged union produced by handle_command and folded
// by apply_event. Only the fields relevant to Kind are populated.
type GameEvent struct {
	Kind EventKind `json:"kind"`
	Mech string    `json:"mech"`

	// PositionUpdated
	Position geometry.Point `json:"position,omitzero"`

	// MechSpawned
	Team   string `json:"team,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Name   string `json:"name,omitempty"`

	// DamageTaken / MechDestroyed
	Damage    uint64       `json:"damage,omitempty"`
	Source    DamageSource `json:"source,omitzero"`
	Remaining uint64       `json:"remaining,omitempty"` // health remaining after DamageTaken is applied

	// RadarScanCompleted
	RadarResults []RadarPing `json:"radar_results,omitempty"`

	// ActionPointsConsumed / ActionPointsExceeded
	Points int `json:"points,omitempty"`

	// MatchTurnCompleted
	NewTurn uint64 `json:"new_turn,omitempty"`

	// GameFinished
	Cause EndCause `json:"cause,omitzero"`

	// RegisterUpdate
	Register RegisterName  `json:"register,omitempty"`
	Value    RegisterValue `json:"value,omitzero"`
}
