package model

import "fmt"

// Team identifies one side of a match.
type Team int

// The two sides.
const (
	TeamBlue Team = iota
	TeamRed
)

func (t Team) String() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamRed:
		return "red"
	}
	return fmt.Sprintf("team(%d)", int(t))
}

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

// Valid reports whether t is blue or red.
func (t Team) Valid() bool { return t == TeamBlue || t == TeamRed }

// ParseTeam accepts "blue" or "red".
func ParseTeam(s string) (Team, error) {
	switch s {
	case "blue":
		return TeamBlue, nil
	case "red":
		return TeamRed, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, s)
}

// MarshalText encodes the team by name.
func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a team name.
func (t *Team) UnmarshalText(b []byte) error {
	parsed, err := ParseTeam(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GroupSize is the number of participants in one match.
const GroupSize = 2 * NumRoles

// Slot is a (team, role) position.
type Slot struct {
	Team Team `json:"team"`
	Role Role `json:"role"`
}

// TeamAssignment maps every slot to a participant id. Each team is indexed by
// role, so every team covers all five roles exactly once.
type TeamAssignment struct {
	Blue [NumRoles]string `json:"blue"`
	Red  [NumRoles]string `json:"red"`
}

// At returns the participant in slot s.
func (a *TeamAssignment) At(s Slot) string {
	if s.Team == TeamRed {
		return a.Red[s.Role]
	}
	return a.Blue[s.Role]
}

// Set places id in slot s.
func (a *TeamAssignment) Set(s Slot, id string) {
	if s.Team == TeamRed {
		a.Red[s.Role] = id
		return
	}
	a.Blue[s.Role] = id
}

// Locate returns the slot held by id.
func (a *TeamAssignment) Locate(id string) (Slot, bool) {
	for r := range NumRoles {
		if a.Blue[r] == id {
			return Slot{Team: TeamBlue, Role: Role(r)}, true
		}
		if a.Red[r] == id {
			return Slot{Team: TeamRed, Role: Role(r)}, true
		}
	}
	return Slot{}, false
}

// Members returns all ten ids, blue first, each side in role order.
func (a *TeamAssignment) Members() []string {
	out := make([]string, 0, GroupSize)
	out = append(out, a.Blue[:]...)
	return append(out, a.Red[:]...)
}

// Side returns the five ids of team t in role order.
func (a *TeamAssignment) Side(t Team) []string {
	if t == TeamRed {
		return append([]string(nil), a.Red[:]...)
	}
	return append([]string(nil), a.Blue[:]...)
}

// Validate checks that all ten slots hold distinct, non-empty ids.
func (a *TeamAssignment) Validate() error {
	seen := make(map[string]struct{}, GroupSize)
	for _, id := range a.Members() {
		if id == "" {
			return fmt.Errorf("%w: empty slot", ErrInvalidAssignment)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s assigned twice", ErrInvalidAssignment, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Group is a block of exactly GroupSize participants drawn from the pool,
// sorted by aggregate skill, descending.
type Group struct {
	Index   int           `json:"index"`
	Members []Participant `json:"members"`
}

// Member returns the participant with the given id.
func (g *Group) Member(id string) (Participant, bool) {
	for _, p := range g.Members {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// IDs returns member ids in group order.
func (g *Group) IDs() []string {
	out := make([]string, len(g.Members))
	for i, p := range g.Members {
		out[i] = p.ID
	}
	return out
}
