package mcp

import (
	"context"
	"os"
	"time"

	"tigermcp/internal/logging"
)

// pollInterval is how often the watchdog checks the parent PID.
const pollInterval = 2 * time.Second

// WatchParent monitors for parent process death in a background goroutine.
// MCP clients launch this server as a child over stdio; when the client
// disconnects or restarts, the parent PID changes and cancelFn triggers a
// graceful shutdown instead of leaving a zombie server behind.
//
// The watchdog must NOT read from stdin — the SDK's StdioTransport owns
// stdin exclusively, and stealing bytes would corrupt the JSON-RPC stream.
// It only polls the parent PID.
//
// The goroutine exits when ctx is canceled or parent death is detected.
func WatchParent(ctx context.Context, cancelFn context.CancelFunc) {
	ppid := os.Getppid()
	log := logging.New("watchdog")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
				if os.Getppid() != ppid {
					log.Warn("parent process died, initiating shutdown", "was_pid", ppid)
					cancelFn()
					return
				}
			}
		}
	}()
}
