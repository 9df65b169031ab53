package main

import (
	"fmt"
	"sync/atomic"

	"github.com/cuemby/jobkit/pkg/job"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/sched"
	"github.com/spf13/cobra"
)

var cooperativeWaitCmd = &cobra.Command{
	Use:   "cooperative-wait",
	Short: "Run the cooperative-wait scenario: a worker runs other queued work while waiting",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(runCooperativeWait())
		return nil
	},
}

func runCooperativeWait() string {
	logger := log.WithComponent("jobkitdemo.cooperative-wait").Logger()

	s, err := sched.New(sched.Config{JobCapacity: 16, Name: "cooperative-wait"})
	if err != nil {
		return fmt.Sprintf("failed to create scheduler: %v", err)
	}

	producer := s.CreateContext(0, 1)
	worker := s.CreateContext(0, 2)
	defer s.ReleaseContext(producer)
	defer s.ReleaseContext(worker)

	var otherRan int32
	other := producer.CreateJob(sched.CreateJobOptions{Body: job.Body{Adapter: func(mode job.CallType, payload any, id job.ID, ctxArg any) int32 {
		if mode == job.Execute {
			atomic.AddInt32(&otherRan, 1)
		}
		return 0
	}}})
	producer.SubmitJob(other, job.Run, sched.SubmitOptions{TargetQueue: 0})

	target := producer.CreateJob(sched.CreateJobOptions{})
	producer.SubmitJob(target, job.Run, sched.SubmitOptions{TargetQueue: 0})

	done := worker.WaitForJob(target)
	logger.Info().Bool("completed", done).Bool("other_ran", atomic.LoadInt32(&otherRan) == 1).Msg("cooperative wait scenario complete")

	return fmt.Sprintf("target completed: %v, worker ran the other queued job while waiting: %v", done, atomic.LoadInt32(&otherRan) == 1)
}
