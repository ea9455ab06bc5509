package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List or trigger the scheduled jobs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the scheduled jobs and their next run",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := buildWithJobs(cmd)
				if err != nil {
					return err
				}
				defer rt.close()
				renderJobs(cmd.OutOrStdout(), rt.jobs.Jobs())
				return nil
			},
		},
		&cobra.Command{
			Use:   "run <name>",
			Short: "Run a job once, outside of its schedule",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := buildWithJobs(cmd)
				if err != nil {
					return err
				}
				defer rt.close()
				result, err := rt.jobs.RunNow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s completed in %s\n", result.JobName, result.Duration)
				return nil
			},
		},
	)
	return cmd
}

func buildWithJobs(cmd *cobra.Command) (*runtime, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !cfg.Scheduler.Enabled {
		return nil, errors.New("jobs: scheduler.enabled is false")
	}
	return build(cmd.Context(), cfg, log)
}
