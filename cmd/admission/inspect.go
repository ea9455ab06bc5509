package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uclouvain/admission-core/internal/application/query"
	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Read-only diagnostics",
	}
	cmd.PersistentFlags().String("lang", "fr", "label language (fr, en)")

	cmd.AddCommand(&cobra.Command{
		Use:   "commands",
		Short: "List the commands registered on the bus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rt, err := build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer rt.close()
			renderCommands(cmd.OutOrStdout(), rt.app.Bus.Registered())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "checklist-config",
		Short: "Print the legal statuses of every checklist tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderChecklistConfiguration(cmd.OutOrStdout(), checklist.DefaultConfiguration(),
				checklist.Doctorate, checklist.General)
		},
	})

	proposition := &cobra.Command{
		Use:   "proposition <uuid>",
		Short: "Show a proposition with its supervision group, checklist and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shared.ParsePropositionID(args[0])
			if err != nil {
				return err
			}
			lang, _ := cmd.Flags().GetString("lang")
			withHistory, _ := cmd.Flags().GetBool("history")

			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rt, err := build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer rt.close()
			out := cmd.OutOrStdout()
			q := rt.app.Queries

			// General propositions have no doctorate view or group.
			p, err := q.Proposition.Handle(ctx, query.GetPropositionQuery{PropositionID: id, Language: lang})
			switch {
			case err == nil:
				renderProposition(out, p)
				group, err := q.Group.Handle(ctx, query.GetGroupQuery{PropositionID: id, Language: lang})
				if err != nil && !shared.IsNotFound(err) {
					return err
				}
				if group != nil {
					renderGroup(out, group)
				}
			case !shared.IsNotFound(err):
				return err
			}

			list, err := q.Checklist.Handle(ctx, query.GetChecklistQuery{PropositionID: id, Language: lang})
			if err != nil {
				return fmt.Errorf("checklist: %w", err)
			}
			renderChecklist(out, list)

			if withHistory {
				entries, err := q.History.Handle(ctx, query.GetHistoryQuery{PropositionID: id, Language: lang})
				if err != nil {
					return err
				}
				renderHistory(out, entries)
			}
			return nil
		},
	}
	proposition.Flags().Bool("history", false, "include the history entries")
	cmd.AddCommand(proposition)

	return cmd
}
