package world

import (
	"fmt"
	"slices"
)

// ActionType names a player action.
type ActionType string

const (
	ActionMove     ActionType = "MOVE"
	ActionInteract ActionType = "INTERACT"
	ActionPickup   ActionType = "PICKUP"
	ActionFight    ActionType = "FIGHT"
	ActionFlee     ActionType = "FLEE"
	ActionUseItem  ActionType = "USE_ITEM"
	ActionReadClue ActionType = "READ_CLUE"
)

// Action is one player intent. Only the fields its Type uses are read.
type Action struct {
	Type     ActionType `json:"type"`
	To       string     `json:"to,omitempty"`
	EntityID string     `json:"entityId,omitempty"`
	ItemID   string     `json:"itemId,omitempty"`
	ToolID   string     `json:"toolId,omitempty"`
	TargetID string     `json:"targetId,omitempty"`
}

// State is the player's progress through a world.
type State struct {
	WorldID      string                `json:"worldId"`
	NodeID       string                `json:"nodeId"`
	Inventory    []string              `json:"inventory"`
	Visited      []string              `json:"visited"`
	Log          []string              `json:"log"`
	Defeated     []string              `json:"defeated"`
	EntityStates map[string]Visibility `json:"entityStateById"`
}

// InitialState places the player at the world's start node.
func InitialState(w World) State {
	return State{
		WorldID:      fmt.Sprintf("WORLD_%d", w.Seed),
		NodeID:       w.StartNodeID,
		Inventory:    []string{},
		Visited:      []string{w.StartNodeID},
		Log:          []string{fmt.Sprintf("World born from seed %d.", w.Seed)},
		Defeated:     []string{},
		EntityStates: map[string]Visibility{},
	}
}

// Visibility returns the current visibility of an entity, taking
// revealed state into account.
func (s State) Visibility(e Entity) Visibility {
	if v, ok := s.EntityStates[e.ID]; ok {
		return v
	}
	return e.Visibility
}

// clone copies every slice and map so the returned state shares nothing
// with s.
func (s State) clone() State {
	out := s
	out.Inventory = slices.Clone(s.Inventory)
	out.Visited = slices.Clone(s.Visited)
	out.Log = slices.Clone(s.Log)
	out.Defeated = slices.Clone(s.Defeated)
	out.EntityStates = make(map[string]Visibility, len(s.EntityStates))
	for k, v := range s.EntityStates {
		out.EntityStates[k] = v
	}
	return out
}

func (s State) logged(format string, args ...any) State {
	out := s.clone()
	out.Log = append(out.Log, fmt.Sprintf(format, args...))
	return out
}

// Reduce applies an action and returns the next state. It never mutates
// w or s. Actions that refer to unknown entities return s unchanged.
func Reduce(w World, s State, a Action) State {
	switch a.Type {
	case ActionMove:
		if _, ok := w.Node(a.To); !ok {
			return s
		}
		edge, ok := w.Edge(s.NodeID, a.To)
		if !ok {
			return s.logged("There is no way from %s to %s.", s.NodeID, a.To)
		}
		if edge.Locked {
			return s.logged("The way to %s is locked.", a.To)
		}
		next := s.logged("Moved to %s.", a.To)
		next.NodeID = a.To
		if !slices.Contains(next.Visited, a.To) {
			next.Visited = append(next.Visited, a.To)
		}
		return next

	case ActionPickup:
		item, ok := w.Entities[a.ItemID]
		if !ok || item.Type != EntityItem || slices.Contains(s.Inventory, a.ItemID) {
			return s
		}
		next := s.logged("Picked up %s.", item.Name)
		next.Inventory = append(next.Inventory, a.ItemID)
		return next

	case ActionInteract:
		ent, ok := w.Entities[a.EntityID]
		if !ok {
			return s
		}
		if len(ent.Contents) > 0 && s.Visibility(ent) != Visible {
			next := s.logged("You inspect %s, revealing its contents.", ent.Name)
			next.EntityStates[ent.ID] = Visible
			return next
		}
		var extra string
		switch {
		case ent.Text != "":
			extra = " " + ent.Text
		case ent.Dialogue != "":
			extra = fmt.Sprintf(" %q", ent.Dialogue)
		case ent.Description != "":
			extra = " " + ent.Description
		}
		return s.logged("Interacted with %s: %s.%s", ent.Type, ent.Name, extra)

	case ActionFight:
		m, ok := w.Entities[a.EntityID]
		if !ok || m.Type != EntityMonster || slices.Contains(s.Defeated, m.ID) {
			return s
		}
		if len(s.Inventory) == 0 {
			return s.logged("You lost to %s. Flee?", m.Name)
		}
		next := s.logged("Defeated %s (%s).", m.Name, m.Rank)
		next.Defeated = append(next.Defeated, m.ID)
		return next

	case ActionFlee:
		if s.NodeID == w.StartNodeID {
			return s.logged("There is nowhere to flee.")
		}
		next := s.logged("You flee back to %s.", w.StartNodeID)
		next.NodeID = w.StartNodeID
		return next

	case ActionUseItem:
		tool, toolOK := w.Entities[a.ToolID]
		target, targetOK := w.Entities[a.TargetID]
		var toolPtr, targetPtr *Entity
		if toolOK {
			toolPtr = &tool
		}
		if targetOK {
			targetPtr = &target
		}
		res := ResolveInteraction(toolPtr, targetPtr)
		next := s.logged("%s", res.Message)
		if res.TargetState != "" && targetOK {
			next.EntityStates[target.ID] = res.TargetState
		}
		return next

	case ActionReadClue:
		clue, ok := w.Entities[a.EntityID]
		if !ok || clue.Type != EntityClue {
			return s
		}
		return s.logged("You read the %s: %s", clue.Name, clue.Text)
	}
	return s
}

// Interaction is the outcome of using one entity on another.
type Interaction struct {
	Message     string
	TargetState Visibility // empty when the target is unchanged
}

// ResolveInteraction decides what happens when tool is used on target.
// Either may be nil.
func ResolveInteraction(tool, target *Entity) Interaction {
	if tool == nil || target == nil {
		return Interaction{Message: "Nothing happens."}
	}
	if tool.HasTag(TagFlammable) && target.HasTag(TagFlammable) {
		return Interaction{Message: "The fire spreads!"}
	}
	if tool.HasTag(TagHeavy) && target.HasTag(TagHollow) {
		return Interaction{
			Message:     fmt.Sprintf("You smashed the %s, revealing what was inside!", target.Name),
			TargetState: Visible,
		}
	}
	return Interaction{Message: fmt.Sprintf("You can't do that with %s.", tool.Name)}
}
