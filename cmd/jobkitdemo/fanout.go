package main

import (
	"fmt"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/sched"
	"github.com/spf13/cobra"
)

var fanoutCmd = &cobra.Command{
	Use:   "fanout",
	Short: "Run the simple fan-out scenario: parent spawns B and C, A depends on both",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, _ := cmd.Flags().GetInt("runs")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		results := runConcurrent(runs, concurrency, runFanout)
		for _, r := range results {
			fmt.Println(r)
		}
		return nil
	},
}

func init() {
	fanoutCmd.Flags().Int("runs", 1, "number of independent fan-out graphs to run")
	fanoutCmd.Flags().Int("concurrency", 4, "maximum number of graphs running at once")
}

func runFanout(runID string) string {
	logger := log.WithComponent("jobkitdemo.fanout").With().Str("run_id", runID).Logger()

	s, err := sched.New(sched.Config{JobCapacity: 16, Name: "fanout-" + runID})
	if err != nil {
		return fmt.Sprintf("[%s] failed to create scheduler: %v", runID, err)
	}
	ctx := s.CreateContext(0, 1)
	defer s.ReleaseContext(ctx)

	order := make(chan string, 3)
	leaf := func(name string) job.Body {
		return job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
			if mode == job.Execute {
				order <- name
			}
			return 0
		}}
	}

	parentBody := job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
		if mode != job.Execute {
			return 0
		}
		c := ctxArg.(*sched.Context)
		b := c.CreateJob(sched.CreateJobOptions{Body: leaf("B"), Parent: id})
		cc := c.CreateJob(sched.CreateJobOptions{Body: leaf("C"), Parent: id})
		c.SubmitJob(b, job.Run, sched.SubmitOptions{TargetQueue: 0})
		c.SubmitJob(cc, job.Run, sched.SubmitOptions{TargetQueue: 0})

		a := c.CreateJob(sched.CreateJobOptions{Body: leaf("A"), Parent: id})
		c.SubmitJob(a, job.Run, sched.SubmitOptions{TargetQueue: 0, Dependencies: []job.ID{b, cc}})
		return 0
	}}

	p := ctx.CreateJob(sched.CreateJobOptions{Body: parentBody})
	ctx.SubmitJob(p, job.Run, sched.SubmitOptions{TargetQueue: 0})

	var ran []string
	for i := 0; i < 4; i++ {
		ctx.RunNextJob()
	}
	close(order)
	for name := range order {
		ran = append(ran, name)
	}
	logger.Info().Strs("executed", ran).Msg("fanout scenario complete")
	return fmt.Sprintf("[%s] fanout executed: %v", runID, ran)
}
