package engine

import (
	"github.com/google/gops/agent"
)

// StartDiagnostics starts a gops agent for runtime inspection of a
// long-running orchestrator process, mirroring the teacher's main.go
// gops wiring. Unlike the teacher, this is opt-in (off by default);
// callers that want it invoke this explicitly, typically from a CLI
// flag, and call the returned stop function before exit.
func StartDiagnostics() (stop func(), err error) {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		return func() {}, err
	}
	return agent.Close, nil
}
