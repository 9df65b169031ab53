package main

import (
	"fmt"
	"sync/atomic"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/sched"
	"github.com/spf13/cobra"
)

var cancelDepCmd = &cobra.Command{
	Use:   "cancel-dep",
	Short: "Run the dependency-cancel scenario: canceling B still lets A run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, _ := cmd.Flags().GetInt("runs")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		for _, r := range runConcurrent(runs, concurrency, runCancelDep) {
			fmt.Println(r)
		}
		return nil
	},
}

func init() {
	cancelDepCmd.Flags().Int("runs", 1, "number of independent scenarios to run")
	cancelDepCmd.Flags().Int("concurrency", 4, "maximum number of scenarios running at once")
}

func runCancelDep(runID string) string {
	logger := log.WithComponent("jobkitdemo.cancel-dep").With().Str("run_id", runID).Logger()

	s, err := sched.New(sched.Config{JobCapacity: 16, Name: "cancel-dep-" + runID})
	if err != nil {
		return fmt.Sprintf("[%s] failed to create scheduler: %v", runID, err)
	}
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	var execA int32
	b := ctx.CreateJob(sched.CreateJobOptions{})
	ctx.SubmitJob(b, job.Run, sched.SubmitOptions{TargetQueue: 0})

	a := ctx.CreateJob(sched.CreateJobOptions{Body: job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
		if mode == job.Execute {
			atomic.AddInt32(&execA, 1)
		}
		return 0
	}}})
	ctx.SubmitJob(a, job.Run, sched.SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{b}})

	state := ctx.CancelJob(b)
	logger.Info().Str("b_final_state", state.String()).Msg("canceled dependency")

	ctx.RunNextJob() // stale dequeue of the already-freed b
	ctx.RunNextJob() // a, now ready

	return fmt.Sprintf("[%s] B canceled (%s), A executed: %v", runID, state, atomic.LoadInt32(&execA) == 1)
}
