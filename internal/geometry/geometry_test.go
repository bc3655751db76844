package geometry

import "testing"

func TestRelativePointOffBoard(t *testing.T) {
	b := Board{Width: 24, Height: 24}

	tests := []struct {
		name string
		p    Point
		dir  Direction
		ok   bool
	}{
		{"southwest corner moving south", Point{0, 0}, South, false},
		{"southwest corner moving north", Point{0, 0}, North, true},
		{"northeast corner moving east", Point{24, 24}, East, false},
		{"center moving east", Point{10, 10}, East, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := RelativePoint(b, tt.p, tt.dir, 1)
			if ok != tt.ok {
				t.Errorf("RelativePoint(%v, %v) ok = %v, want %v", tt.p, tt.dir, ok, tt.ok)
			}
		})
	}
}

func TestRelativePointDiagonalCountsTiles(t *testing.T) {
	b := Board{Width: 24, Height: 24}
	p, ok := RelativePoint(b, Point{10, 10}, NorthEast, 3)
	if !ok {
		t.Fatal("expected on-board result")
	}
	if p != (Point{13, 13}) {
		t.Errorf("diagonal length 3 should move 3 tiles each axis, got %v", p)
	}
}

func TestGatherPointsTruncatesAtEdge(t *testing.T) {
	b := Board{Width: 24, Height: 24}
	steps := GatherPoints(b, Point{22, 10}, East, 6)
	if len(steps) != 2 {
		t.Fatalf("expected gather to stop at the board edge, got %d steps", len(steps))
	}
	if steps[0].Point != (Point{23, 10}) || steps[0].Distance != 1 {
		t.Errorf("unexpected first step: %+v", steps[0])
	}
	if steps[1].Point != (Point{24, 10}) || steps[1].Distance != 2 {
		t.Errorf("unexpected second step: %+v", steps[1])
	}
}

func TestAdjacentPointsOnEdge(t *testing.T) {
	b := Board{Width: 24, Height: 24}
	neighbors := AdjacentPoints(b, Point{0, 0})
	if len(neighbors) != 3 {
		t.Fatalf("corner tile should have 3 on-board neighbors, got %d", len(neighbors))
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		src  Point
		tgt  Point
		want Direction
	}{
		{"due east", Point{0, 0}, Point{5, 0}, East},
		{"due north", Point{0, 0}, Point{0, 5}, North},
		{"northeast diagonal", Point{0, 0}, Point{5, 5}, NorthEast},
		{"due south", Point{0, 0}, Point{0, -5}, South},
		{"due west", Point{0, 0}, Point{-5, 0}, West},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.src, tt.tgt)
			if got != tt.want {
				t.Errorf("Bearing(%v, %v) = %v, want %v", tt.src, tt.tgt, got, tt.want)
			}
		})
	}
}

func TestNeighborProbeOrder(t *testing.T) {
	order := NeighborProbeOrder()
	want := [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
	if order != want {
		t.Errorf("probe order = %v, want %v", order, want)
	}
}
