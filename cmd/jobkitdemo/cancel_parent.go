package main

import (
	"fmt"
	"sync/atomic"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/sched"
	"github.com/spf13/cobra"
)

var cancelParentCmd = &cobra.Command{
	Use:   "cancel-parent",
	Short: "Run the parent-cancel scenario: canceling P stops its child C from executing",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, _ := cmd.Flags().GetInt("runs")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		for _, r := range runConcurrent(runs, concurrency, runCancelParent) {
			fmt.Println(r)
		}
		return nil
	},
}

func init() {
	cancelParentCmd.Flags().Int("runs", 1, "number of independent scenarios to run")
	cancelParentCmd.Flags().Int("concurrency", 4, "maximum number of scenarios running at once")
}

func runCancelParent(runID string) string {
	logger := log.WithComponent("jobkitdemo.cancel-parent").With().Str("run_id", runID).Logger()

	s, err := sched.New(sched.Config{JobCapacity: 16, Name: "cancel-parent-" + runID})
	if err != nil {
		return fmt.Sprintf("[%s] failed to create scheduler: %v", runID, err)
	}
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	var execC int32
	p := ctx.CreateJob(sched.CreateJobOptions{})
	ctx.SubmitJob(p, job.Run, sched.SubmitOptions{TargetQueue: 0})

	c := ctx.CreateJob(sched.CreateJobOptions{Body: job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
		if mode == job.Execute {
			atomic.AddInt32(&execC, 1)
		}
		return 0
	}}, Parent: p})
	ctx.SubmitJob(c, job.Run, sched.SubmitOptions{TargetQueue: 0})

	state := ctx.CancelJob(p)
	logger.Info().Str("p_final_state", state.String()).Msg("canceled parent")

	ctx.RunNextJob() // p: no-op, cancel-flagged
	ctx.RunNextJob() // c: cancel-flagged, skips EXECUTE

	return fmt.Sprintf("[%s] P canceled (%s), C executed: %v", runID, state, atomic.LoadInt32(&execC) == 1)
}
