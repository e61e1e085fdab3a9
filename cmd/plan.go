package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hantar/loadplan/app"
	"github.com/hantar/loadplan/config"
	"github.com/hantar/loadplan/core/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one advisory planning pass over the snapshot and print the result",
	RunE:  planOnce,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func planOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// One-shot runs never want the broker feed.
	cfg.Fleet.Enabled = false

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, sum, err := svc.Planner.Run()
	if err != nil {
		return err
	}
	out := struct {
		Trips       []planner.DraftTrip `json:"trips"`
		Unplannable int                 `json:"unplannable"`
		Summary     planner.Summary     `json:"summary"`
	}{Trips: res.Trips, Unplannable: len(res.Unplannable), Summary: sum}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
