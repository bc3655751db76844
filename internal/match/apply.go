package match

// ApplyEvent folds a single event into state, mutating it in place.
// State is exclusively owned by the coordinator goroutine driving its
// match, so in-place mutation here is safe and avoids the
// deep-clone-per-event cost a value-semantics fold would pay on every
// turn; HandleCommand above remains the pure half of the aggregate.
func ApplyEvent(s *State, evt GameEvent) {
	switch evt.Kind {
	case EventMechSpawned:
		s.Mechs[evt.Mech] = &MechState{
			ID: evt.Mech, Name: evt.Name, Avatar: evt.Avatar, Team: evt.Team,
			Position: evt.Position, Health: InitialHealth, Alive: true,
			RemainingAPs: s.Parameters.APsPerTurn,
			Registers:    make(map[RegisterName]RegisterValue),
		}
		s.Generation++

	case EventPositionUpdated:
		if m, ok := s.Mechs[evt.Mech]; ok {
			m.Position = evt.Position
			s.Generation++
		}

	case EventDamageTaken:
		if m, ok := s.Mechs[evt.Mech]; ok {
			m.Health = saturatingSub(m.Health, evt.Damage)
			s.Generation++
		}

	case EventMechDestroyed:
		if m, ok := s.Mechs[evt.Mech]; ok {
			m.Alive = false
			m.Health = 0
			s.Generation++
		}

	case EventRadarScanCompleted:
		s.RadarPings[evt.Mech] = evt.RadarResults

	case EventActionPointsConsumed:
		if m, ok := s.Mechs[evt.Mech]; ok {
			if evt.Points >= m.RemainingAPs {
				m.RemainingAPs = 0
			} else {
				m.RemainingAPs -= evt.Points
			}
		}

	case EventActionPointsExceeded:
		// report only, no state change.

	case EventMechTurnCompleted:
		s.Turn.Taken[evt.Mech] = true

	case EventMatchTurnCompleted:
		s.Turn.Taken = make(map[string]bool)
		s.Turn.Current = evt.NewTurn
		for _, m := range s.Mechs {
			m.RemainingAPs = s.Parameters.APsPerTurn
		}

	case EventGameFinished:
		cause := evt.Cause
		s.Completed = &cause

	case EventRegisterUpdate:
		if m, ok := s.Mechs[evt.Mech]; ok {
			m.Registers[evt.Register] = evt.Value
		}
	}
}

// Fold runs HandleCommand then applies every resulting event to state
// in order: state' = events.fold(state, ApplyEvent).
func Fold(s *State, cmd MechCommand) ([]GameEvent, error) {
	events, err := HandleCommand(s, cmd)
	if err != nil {
		return nil, err
	}
	for _, evt := range events {
		ApplyEvent(s, evt)
	}
	return events, nil
}
