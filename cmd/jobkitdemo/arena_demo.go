package main

import (
	"fmt"
	"unsafe"

	"github.com/cuemby/jobkit/pkg/arena"
	"github.com/cuemby/jobkit/pkg/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var arenaCmd = &cobra.Command{
	Use:   "arena",
	Short: "Run the arena scenario: allocate, mark, reset_to, re-allocate, address-reuse check",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(runArena())
		return nil
	},
}

func runArena() string {
	runID := uuid.NewString()
	logger := log.WithComponent("jobkitdemo.arena").With().Str("run_id", runID).Logger()

	a, err := arena.New(arena.Config{ChunkSize: 4096, Growable: true, Name: "demo", Tag: runID})
	if err != nil {
		return fmt.Sprintf("failed to create arena: %v", err)
	}

	first, err := a.Allocate(128, a.DefaultAlignment())
	if err != nil || first == nil {
		return fmt.Sprintf("first allocation failed: %v", err)
	}
	firstAddr := addrOf(first.Bytes())

	marker := a.Mark()

	second, err := a.Allocate(128, a.DefaultAlignment())
	if err != nil || second == nil {
		return fmt.Sprintf("second allocation failed: %v", err)
	}
	secondAddr := addrOf(second.Bytes())

	a.ResetTo(marker)

	third, err := a.Allocate(128, a.DefaultAlignment())
	if err != nil || third == nil {
		return fmt.Sprintf("third allocation failed: %v", err)
	}
	thirdAddr := addrOf(third.Bytes())

	reused := thirdAddr == secondAddr
	logger.Info().
		Str("first", fmt.Sprintf("%#x", firstAddr)).
		Str("second", fmt.Sprintf("%#x", secondAddr)).
		Str("third", fmt.Sprintf("%#x", thirdAddr)).
		Bool("address_reused_after_reset", reused).
		Msg("arena scenario complete")

	return fmt.Sprintf("first=%#x second=%#x third=%#x, address reused after reset_to: %v", firstAddr, secondAddr, thirdAddr, reused)
}

func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
