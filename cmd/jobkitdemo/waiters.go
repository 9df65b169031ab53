package main

import (
	"fmt"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/sched"
	"github.com/spf13/cobra"
)

var waitersCmd = &cobra.Command{
	Use:   "waiters",
	Short: "Run the waiter-overflow scenario: the WaitersMax+1'th dependent is canceled",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(runWaiters())
		return nil
	},
}

func runWaiters() string {
	logger := log.WithComponent("jobkitdemo.waiters").Logger()

	s, err := sched.New(sched.Config{JobCapacity: job.WaitersMax * 2, Name: "waiters"})
	if err != nil {
		return fmt.Sprintf("failed to create scheduler: %v", err)
	}
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	d := ctx.CreateJob(sched.CreateJobOptions{})
	ctx.SubmitJob(d, job.Run, sched.SubmitOptions{TargetQueue: 0})

	fit := 0
	for i := 0; i < job.WaitersMax; i++ {
		dependent := ctx.CreateJob(sched.CreateJobOptions{})
		if ctx.SubmitJob(dependent, job.Run, sched.SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{d}}) == job.Success {
			fit++
		}
	}

	overflow := ctx.CreateJob(sched.CreateJobOptions{})
	res := ctx.SubmitJob(overflow, job.Run, sched.SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{d}})
	logger.Info().Int("fit", fit).Str("overflow_result", res.String()).Msg("waiter overflow scenario complete")

	return fmt.Sprintf("dependents accepted: %d/%d, overflow result: %s", fit, job.WaitersMax, res)
}
