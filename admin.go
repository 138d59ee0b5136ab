package main

import "fmt"

// AdminAction identifies one administrative command
type AdminAction string

// The closed set of admin commands consumed by the match engine and the
// economy collaborator. Flag setters are honored on every subsequent tick;
// the rest are one-shot operations.
const (
	AdminSetUnlimitedElixir AdminAction = "set_unlimited_elixir"
	AdminSetInvulnerable    AdminAction = "set_invulnerable"
	AdminSetFrozen          AdminAction = "set_frozen"
	AdminSetElixirMult      AdminAction = "set_elixir_mult"
	AdminSetAutoplay        AdminAction = "set_autoplay"
	AdminForceEnd           AdminAction = "force_end"
	AdminDestroyTowers      AdminAction = "destroy_towers"
	AdminForceSpawn         AdminAction = "force_spawn"
	AdminLiveStats          AdminAction = "live_stats"
	AdminOpenChest          AdminAction = "open_chest"
)

// AdminCommand is the tagged wire form of an admin action. TargetID names the
// player the command applies to.
type AdminCommand struct {
	Action   AdminAction `json:"action"`
	TargetID string      `json:"tid"`
	Enabled  bool        `json:"enabled,omitempty"`
	Value    float64     `json:"value,omitempty"`
	CardID   string      `json:"card,omitempty"`
	X        float64     `json:"x,omitempty"`
	Y        float64     `json:"y,omitempty"`
	WinnerID string      `json:"winner,omitempty"`
	ChestID  string      `json:"chest,omitempty"`
}

// DispatchAdmin routes a command to the target's live match or to the economy
// collaborator. Returns an optional response payload.
func DispatchAdmin(queue *MatchQueue, rewards *Rewards, cmd AdminCommand) (interface{}, error) {
	if cmd.Action == AdminOpenChest {
		if rewards == nil {
			return nil, fmt.Errorf("economy unavailable")
		}
		return rewards.ForceOpenChest(cmd.TargetID, cmd.ChestID)
	}

	match := queue.MatchFor(cmd.TargetID)
	if match == nil {
		return nil, fmt.Errorf("no active match for %s", cmd.TargetID)
	}

	switch cmd.Action {
	case AdminSetUnlimitedElixir:
		match.SetUnlimitedElixir(cmd.TargetID, cmd.Enabled)
	case AdminSetInvulnerable:
		match.SetInvulnerable(cmd.TargetID, cmd.Enabled)
	case AdminSetFrozen:
		match.SetFrozen(cmd.TargetID, cmd.Enabled)
	case AdminSetElixirMult:
		match.SetElixirMultiplier(cmd.TargetID, cmd.Value)
	case AdminSetAutoplay:
		match.SetAutoplay(cmd.TargetID, cmd.Enabled)
	case AdminForceEnd:
		match.ForceEnd(cmd.WinnerID)
	case AdminDestroyTowers:
		match.DestroyTowers(cmd.TargetID)
	case AdminForceSpawn:
		match.ForceSpawn(cmd.TargetID, cmd.CardID, cmd.X, cmd.Y)
	case AdminLiveStats:
		return match.GetLiveStats(cmd.TargetID), nil
	default:
		return nil, fmt.Errorf("unknown admin action %q", cmd.Action)
	}
	return nil, nil
}
