// Package game holds the match-state model reported by the provider: the
// tagged MatchState variant, the PlayerSnapshot rows and the Store the poller
// publishes into.
//
// Maintenance notes:
//   - A MatchState is immutable once published. Store.Publish clones the
//     player slices so neither the provider decoder nor the UI can mutate a
//     published value through a shared backing array.
//   - Nothing in this package interprets game semantics; names, agents and
//     ranks are carried exactly as the provider reports them.
package game

import (
	"fmt"
	"strings"
)

// Kind is the tag of the MatchState variant.
type Kind int

const (
	KindIdle Kind = iota
	KindPregame
	KindIngame
	KindDisconnected
)

var kindNames = map[Kind]string{
	KindIdle:         "idle",
	KindPregame:      "pregame",
	KindIngame:       "ingame",
	KindDisconnected: "disconnected",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind as its wire name.
func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown match state kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a wire name. Unknown names are rejected so a
// provider speaking a newer protocol is reported instead of shown as idle.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for kind, s := range kindNames {
		if s == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown match state %q", name)
}

// PlayerSnapshot is one player row. PUUID is the unique key.
type PlayerSnapshot struct {
	PUUID    string `json:"puuid"`
	Name     string `json:"name"`
	Agent    string `json:"agent"`
	Locked   bool   `json:"locked"`
	Party    string `json:"party"`
	IsMe     bool   `json:"is_me"`
	RankTier int    `json:"rank_tier"`
	RankRR   int    `json:"rank_rr"`
	Level    int    `json:"level"`
}

// MatchState is the result of one poll cycle. Map, Mode and Side are only
// meaningful for Pregame (all three) and Ingame (Map).
type MatchState struct {
	Kind    Kind             `json:"state"`
	MatchID string           `json:"match_id,omitempty"`
	Map     string           `json:"map_name,omitempty"`
	Mode    string           `json:"mode_name,omitempty"`
	Side    string           `json:"side,omitempty"`
	Allies  []PlayerSnapshot `json:"allies"`
	Enemies []PlayerSnapshot `json:"enemies"`
}

// Idle returns the empty idle state.
func Idle() MatchState {
	return MatchState{Kind: KindIdle}
}

// Disconnected returns the state a provider reports when it has no session.
func Disconnected() MatchState {
	return MatchState{Kind: KindDisconnected}
}

// Pregame builds an agent-select state.
func Pregame(matchID, mapName, mode, side string, allies, enemies []PlayerSnapshot) MatchState {
	return MatchState{
		Kind:    KindPregame,
		MatchID: matchID,
		Map:     mapName,
		Mode:    mode,
		Side:    side,
		Allies:  allies,
		Enemies: enemies,
	}
}

// Ingame builds an in-match state.
func Ingame(matchID, mapName string, allies, enemies []PlayerSnapshot) MatchState {
	return MatchState{
		Kind:    KindIngame,
		MatchID: matchID,
		Map:     mapName,
		Allies:  allies,
		Enemies: enemies,
	}
}

// InMatch reports whether the state carries player rows.
func (s MatchState) InMatch() bool {
	return s.Kind == KindPregame || s.Kind == KindIngame
}

// Clone returns a deep copy of s.
func (s MatchState) Clone() MatchState {
	c := s
	c.Allies = clonePlayers(s.Allies)
	c.Enemies = clonePlayers(s.Enemies)
	return c
}

// FindPlayer looks a player up by PUUID on both teams.
func (s MatchState) FindPlayer(puuid string) (PlayerSnapshot, bool) {
	for _, p := range s.Allies {
		if p.PUUID == puuid {
			return p, true
		}
	}
	for _, p := range s.Enemies {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

func clonePlayers(in []PlayerSnapshot) []PlayerSnapshot {
	if in == nil {
		return nil
	}
	out := make([]PlayerSnapshot, len(in))
	copy(out, in)
	return out
}
