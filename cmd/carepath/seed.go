package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/carepath/api"
)

const defaultScenario = "nursing-home"

func newSeedCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with reference or demo data",
	}
	cmd.AddCommand(newSeedInitiativesCmd(global))
	cmd.AddCommand(newSeedSampleCmd(global))
	return cmd
}

func newSeedInitiativesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initiatives",
		Short: "Load the standard workplace-initiative catalog (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			added, err := a.store.LoadStandardInitiatives(cmd.Context())
			if err != nil {
				return withCode(exitDB, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initiatives added: %d\n", added)
			return nil
		},
	}
}

func newSeedSampleCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sample [scenario]",
		Short: "Reset the database and load a demo scenario (default nursing-home)",
		Long:  "Reset the database and load a demo scenario.\n\nScenarios:\n" + scenarioList(),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := defaultScenario
			if len(args) == 1 {
				id = args[0]
			}

			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.handler.ApplyScenario(cmd.Context(), id)
			if errors.Is(err, api.ErrUnknownScenario) {
				return withCode(exitUsage, err)
			}
			if err != nil {
				return withCode(exitDB, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scenario:    %s\n", resp.ScenarioID)
			fmt.Fprintf(out, "provider:    %s\n", resp.ProviderID)
			fmt.Fprintf(out, "facilities:  %d\n", resp.Facilities)
			fmt.Fprintf(out, "positions:   %d\n", resp.Positions)
			fmt.Fprintf(out, "staff:       %d\n", resp.Staff)
			if resp.PlanID != "" {
				fmt.Fprintf(out, "plan:        %s\n", resp.PlanID)
			}
			return nil
		},
	}
}

func scenarioList() string {
	var s string
	for _, sc := range api.Scenarios() {
		s += fmt.Sprintf("  %-14s %s\n", sc.ID, sc.Description)
	}
	return s
}
