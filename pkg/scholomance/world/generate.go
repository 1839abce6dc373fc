package world

import (
	"fmt"
	"strings"

	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// NodeType classifies a room of the world.
type NodeType string

const (
	NodeRoom   NodeType = "ROOM"
	NodeHub    NodeType = "HUB"
	NodeArena  NodeType = "ARENA"
	NodeShrine NodeType = "SHRINE"
	NodeVault  NodeType = "VAULT"
	NodeRift   NodeType = "RIFT"
)

// EntityType classifies a thing placed in a node.
type EntityType string

const (
	EntityMonster EntityType = "MONSTER"
	EntityItem    EntityType = "ITEM"
	EntityNPC     EntityType = "NPC"
	EntityDoor    EntityType = "DOOR"
	EntityClue    EntityType = "CLUE"
)

// Tag is a physical property used by ResolveInteraction.
type Tag string

const (
	TagFlammable Tag = "flammable"
	TagHollow    Tag = "hollow"
	TagMoveable  Tag = "moveable"
	TagReadable  Tag = "readable"
	TagHidden    Tag = "hidden"
	TagHeavy     Tag = "heavy"
)

// Visibility is whether an entity's contents can be seen.
type Visibility string

const (
	Visible  Visibility = "visible"
	Obscured Visibility = "obscured"
	Locked   Visibility = "locked"
)

// Rank grades monsters.
type Rank string

const (
	RankCommon Rank = "COMMON"
	RankElite  Rank = "ELITE"
	RankBoss   Rank = "BOSS"
)

// BossID is the identifier of the single boss every world contains.
const BossID = "M_BOSS"

// Stats are a monster's combat numbers.
type Stats struct {
	HP  int `json:"hp"`
	Atk int `json:"atk"`
}

// Effects describe what a consumable item does.
type Effects struct {
	UnlockChance float64 `json:"unlockChance"`
	Heal         int     `json:"heal"`
}

// Entity is anything placed in the world. Fields that do not apply to
// the entity's type are left zero.
type Entity struct {
	ID            string     `json:"id"`
	Type          EntityType `json:"type"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Tags          []Tag      `json:"tags,omitempty"`
	Visibility    Visibility `json:"hiddenState"`
	Contents      []string   `json:"contents,omitempty"`
	Effects       *Effects   `json:"effects,omitempty"`
	ConsumedOnUse bool       `json:"consumedOnUse,omitempty"`
	Dialogue      string     `json:"dialogue,omitempty"`
	Locked        bool       `json:"locked,omitempty"`
	KeyHint       string     `json:"keyHint,omitempty"`
	Text          string     `json:"text,omitempty"`
	Rank          Rank       `json:"rank,omitempty"`
	Stats         *Stats     `json:"stats,omitempty"`
}

// HasTag reports whether the entity carries tag.
func (e Entity) HasTag(tag Tag) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Node is one room.
type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Entities    []string `json:"entities"`
}

// Edge connects two nodes. Edges are traversable in both directions.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Locked bool   `json:"locked"`
}

// World is a generated dungeon. Contained entities appear in Entities
// but only in their container's Contents, never in a node.
type World struct {
	Seed        uint32            `json:"seed"`
	Metrics     Metrics           `json:"metrics"`
	Nodes       []Node            `json:"nodes"`
	Edges       []Edge            `json:"edges"`
	Entities    map[string]Entity `json:"entitiesById"`
	StartNodeID string            `json:"startNodeId"`
}

// Node returns the node with the given id.
func (w World) Node(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge joining a and b in either direction.
func (w World) Edge(a, b string) (Edge, bool) {
	for _, e := range w.Edges {
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return e, true
		}
	}
	return Edge{}, false
}

// Generation bounds.
const (
	MinNodes       = 6
	MaxNodes       = 60
	MinExtraEdges  = 2
	MaxExtraEdges  = 40
	MinEntities    = 15
	MaxEntities    = 300
	nodesPer       = 35
	extraEdgesPer  = 90
	entitiesPer    = 10
	lockedEdgeOdds = 0.2
)

var (
	hubTitles = []string{"SCROLL ATRIUM", "EDEN OF TEXT", "THE INDEX HALL"}
	roomTypes = []NodeType{NodeRoom, NodeArena, NodeShrine, NodeVault, NodeRift}

	roomNouns = map[NodeType]string{
		NodeRoom:   "CHAMBER",
		NodeArena:  "ARENA",
		NodeShrine: "SHRINE",
		NodeVault:  "VAULT",
		NodeRift:   "RIFT",
	}

	fallbackKeywords = []string{"ink", "margin", "silence", "verse", "quill", "echo"}

	moodDescriptions = map[result.Feel]string{
		result.FeelUnknown: "Blank parchment walls hum faintly.",
		result.FeelJoy:     "Warm light spills across the stones.",
		result.FeelSorrow:  "Water weeps from the ceiling.",
		result.FeelRage:    "The walls are scorched and cracked.",
		result.FeelFear:    "Shadows lean closer than they should.",
		result.FeelAwe:     "The vaulted ceiling is lost in starlight.",
		result.FeelDesire:  "Something just out of reach glitters.",
	}

	monsterNames = []string{"Ink Wraith", "Glyph Hound", "Margin Ghoul", "Paper Golem", "Rhyme Leech"}
)

type itemKind struct {
	name    string
	tags    []Tag
	effects *Effects
	consume bool
}

var itemKinds = []itemKind{
	{name: "Iron Hammer", tags: []Tag{TagHeavy}},
	{name: "Torch", tags: []Tag{TagFlammable}},
	{name: "Oil Flask", tags: []Tag{TagFlammable}, consume: true},
	{name: "Healing Herb", effects: &Effects{Heal: 5}, consume: true},
	{name: "Skeleton Key", effects: &Effects{UnlockChance: 0.5}, consume: true},
	{name: "Stone Idol", tags: []Tag{TagHeavy, TagMoveable}},
}

var containerKinds = []itemKind{
	{name: "Wooden Crate", tags: []Tag{TagHollow, TagFlammable, TagMoveable}},
	{name: "Clay Urn", tags: []Tag{TagHollow}},
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nodeID(i int) string { return fmt.Sprintf("N_%d", i) }

// Generate builds the world for a scroll. It is a pure function of its
// arguments: the same metrics and scroll always yield the same world.
func Generate(m Metrics, s Scroll) World {
	rng := NewRNG(m.Seed)
	c := m.Complexity

	keywords := Keywords(s.Text, 16)
	if len(keywords) == 0 {
		keywords = fallbackKeywords
	}
	mood := DominantFeel(Mood(s.Text))

	w := World{
		Seed:        m.Seed,
		Metrics:     m,
		Entities:    make(map[string]Entity),
		StartNodeID: nodeID(0),
	}

	nodeCount := clamp(c/nodesPer, MinNodes, MaxNodes)
	w.Nodes = make([]Node, nodeCount)
	for i := range w.Nodes {
		n := Node{ID: nodeID(i), Description: moodDescriptions[mood], Entities: []string{}}
		if i == 0 {
			n.Type = NodeHub
			n.Title = Pick(rng, hubTitles)
		} else {
			n.Type = Pick(rng, roomTypes)
			n.Title = roomNouns[n.Type] + " OF " + strings.ToUpper(keywords[(i-1)%len(keywords)])
		}
		w.Nodes[i] = n
	}

	for i := 1; i < nodeCount; i++ {
		w.Edges = append(w.Edges, Edge{From: nodeID(i - 1), To: nodeID(i)})
	}
	extra := clamp(c/extraEdgesPer, MinExtraEdges, MaxExtraEdges)
	for i := 0; i < extra; i++ {
		from := rng.Intn(0, nodeCount-1)
		to := rng.Intn(0, nodeCount-1)
		if to == from {
			to = (from + 1) % nodeCount
		}
		w.Edges = append(w.Edges, Edge{From: nodeID(from), To: nodeID(to), Locked: rng.Chance(lockedEdgeOdds)})
	}

	budget := clamp(c/entitiesPer, MinEntities, MaxEntities)
	for i := 0; i < budget; i++ {
		e := spawn(rng, &w, i, keywords)
		node := rng.Intn(0, nodeCount-1)
		w.Entities[e.ID] = e
		w.Nodes[node].Entities = append(w.Nodes[node].Entities, e.ID)
	}

	boss := Entity{
		ID:          BossID,
		Type:        EntityMonster,
		Name:        "The " + strings.ToUpper(keywords[0]) + " Wyrm",
		Description: "It is written in the final line.",
		Visibility:  Visible,
		Rank:        RankBoss,
		Stats:       &Stats{HP: 30 + c/10, Atk: 6 + rng.Intn(0, 4)},
	}
	w.Entities[boss.ID] = boss
	last := &w.Nodes[nodeCount-1]
	last.Entities = append(last.Entities, boss.ID)

	return w
}

// spawn rolls one top-level entity. Containers register their contents
// in w directly.
func spawn(rng *RNG, w *World, i int, keywords []string) Entity {
	keyword := Pick(rng, keywords)
	roll := rng.Float()
	switch {
	case roll < 0.3:
		elite := rng.Chance(0.15)
		e := Entity{
			ID:         fmt.Sprintf("M_%d", i),
			Type:       EntityMonster,
			Name:       Pick(rng, monsterNames),
			Visibility: Visible,
			Rank:       RankCommon,
			Stats:      &Stats{HP: rng.Intn(5, 15), Atk: rng.Intn(1, 5)},
		}
		if elite {
			e.Rank = RankElite
			e.Stats.HP *= 2
			e.Stats.Atk++
		}
		return e
	case roll < 0.5:
		return newItem(fmt.Sprintf("I_%d", i), Pick(rng, itemKinds))
	case roll < 0.62:
		kind := Pick(rng, containerKinds)
		e := newItem(fmt.Sprintf("X_%d", i), kind)
		e.Visibility = Obscured
		e.Description = "Something rattles inside."
		inner := newItem(fmt.Sprintf("I_%d_0", i), Pick(rng, itemKinds))
		w.Entities[inner.ID] = inner
		e.Contents = []string{inner.ID}
		return e
	case roll < 0.75:
		return Entity{
			ID:         fmt.Sprintf("P_%d", i),
			Type:       EntityNPC,
			Name:       "Scribe of " + capitalize(keyword),
			Visibility: Visible,
			Dialogue:   fmt.Sprintf("Have you read the passage on %s?", keyword),
		}
	case roll < 0.9:
		return Entity{
			ID:         fmt.Sprintf("C_%d", i),
			Type:       EntityClue,
			Name:       "Inscription",
			Tags:       []Tag{TagReadable},
			Visibility: Visible,
			Text:       fmt.Sprintf("The word %q is carved here.", keyword),
		}
	default:
		locked := rng.Chance(0.5)
		e := Entity{
			ID:         fmt.Sprintf("D_%d", i),
			Type:       EntityDoor,
			Name:       "Door",
			Visibility: Visible,
			Locked:     locked,
		}
		if locked {
			e.Visibility = Locked
			e.KeyHint = "Its lock is shaped like the letter " + strings.ToUpper(keyword[:1]) + "."
		}
		return e
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func newItem(id string, kind itemKind) Entity {
	e := Entity{
		ID:            id,
		Type:          EntityItem,
		Name:          kind.name,
		Visibility:    Visible,
		ConsumedOnUse: kind.consume,
	}
	if len(kind.tags) > 0 {
		e.Tags = append([]Tag(nil), kind.tags...)
	}
	if kind.effects != nil {
		fx := *kind.effects
		e.Effects = &fx
	}
	return e
}
