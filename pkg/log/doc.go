/*
Package log provides structured logging for jobkit, built on
github.com/rs/zerolog.

A host embedding jobkit calls Init once at startup to pick a level and an
output format; every jobkit component then derives a component-scoped
child logger via WithComponent, so log lines carry a "component" field
identifying which subsystem (arena, scheduler, queue, context) produced
them.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	schedLog := log.WithComponent("scheduler")
	schedLog.Debug().Uint64("job_id", uint64(id)).Msg("job ready")

If Init is never called, Logger defaults to zerolog's standard writer at
info level, so tests and short CLI runs still produce readable output.
*/
package log
