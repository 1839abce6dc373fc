package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
	"github.com/cognicore/scholomance/pkg/scholomance/world"
)

var worldFlags struct {
	id          string
	title       string
	actionsPath string
}

var worldCmd = &cobra.Command{
	Use:   "world [file]",
	Short: "Generate the scroll world for a text",
	Long: `World computes the metrics of a scroll (a file, or stdin when omitted)
and prints them with the dungeon they seed as JSON. The same scroll always
produces the same world.

With --actions, a JSON array of actions is played against the world and
the resulting state is included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWorld,
}

func init() {
	f := worldCmd.Flags()
	f.StringVar(&worldFlags.id, "id", "", "Scroll id (part of the seed)")
	f.StringVar(&worldFlags.title, "title", "", "Scroll title (part of the seed)")
	f.StringVar(&worldFlags.actionsPath, "actions", "", "Path to a JSON array of actions to play")
}

type worldOutput struct {
	SessionID string              `json:"sessionId"`
	Metrics   world.Metrics       `json:"metrics"`
	Keywords  []string            `json:"keywords"`
	Mood      result.Feel         `json:"mood"`
	World     world.World         `json:"world"`
	State     world.State         `json:"state"`
	Moods     map[result.Feel]int `json:"moods,omitempty"`
}

func runWorld(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	logger := logging.New("world")

	var actions []world.Action
	if worldFlags.actionsPath != "" {
		data, err := os.ReadFile(worldFlags.actionsPath)
		if err != nil {
			return fmt.Errorf("read actions: %w", err)
		}
		if err := json.Unmarshal(data, &actions); err != nil {
			return fmt.Errorf("parse actions: %w", err)
		}
	}

	sess := world.NewSession(world.Scroll{ID: worldFlags.id, Title: worldFlags.title, Text: text})
	for _, a := range actions {
		sess.Dispatch(a)
	}
	logger.Debug("world generated",
		"session", sess.ID,
		"seed", sess.World.Seed,
		"nodes", len(sess.World.Nodes),
		"entities", len(sess.World.Entities),
		"actions", len(actions))

	moods := world.Mood(text)
	return writeJSON(cmd.OutOrStdout(), worldOutput{
		SessionID: sess.ID,
		Metrics:   sess.World.Metrics,
		Keywords:  world.Keywords(text, 8),
		Mood:      world.DominantFeel(moods),
		World:     sess.World,
		State:     sess.Snapshot(),
		Moods:     moods,
	})
}
