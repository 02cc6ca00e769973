/*
Package log provides structured logging for taskdeck using zerolog.

A single global logger is initialized once via Init, with either JSON
output (for machine consumption) or console output (for humans at a
terminal). Components create child loggers with WithComponent so every
line can be filtered by the layer that emitted it:

	sessionLog := log.WithComponent("session")
	sessionLog.Info().Str("state", "authenticated").Msg("session initialized")

WithUserID and WithTaskID add entity context for operations that act
on a specific user or task. Console output is the default for the CLI;
pass JSONOutput when logs feed an aggregator.
*/
package log
