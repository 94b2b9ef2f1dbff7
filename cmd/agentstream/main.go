// Command agentstream turns raw CLI-agent output into NDJSON lifecycle
// events on stdout. It reads stdin by default, follows a growing
// transcript file with -tail, or replays canned lifecycles with -mock.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/agent-console/agentstream/internal/config"
	"github.com/agent-console/agentstream/internal/dispatch"
	"github.com/agent-console/agentstream/internal/event"
	"github.com/agent-console/agentstream/internal/mock"
	"github.com/agent-console/agentstream/internal/session"
	"github.com/agent-console/agentstream/internal/translate"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	sessionID := flag.String("session", "", "Session id for the input stream (default: generated)")
	agentName := flag.String("agent", "", "Override the configured agent name")
	exitCode := flag.Int("exit-code", 0, "Exit code reported when stdin ends")
	tailPath := flag.String("tail", "", "Follow FILE instead of reading stdin")
	mockMode := flag.Bool("mock", false, "Replay canned mock lifecycles")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("[agentstream] config: %v", err)
	}
	if *agentName != "" {
		cfg.Agent.Name = *agentName
	}

	id := *sessionID
	if id == "" {
		id = "sess-" + uuid.NewString()[:8]
	}

	disp := dispatch.New()
	defer disp.Close()

	enc := json.NewEncoder(os.Stdout)
	disp.Subscribe(func(ev event.Event) {
		if err := enc.Encode(ev); err != nil {
			log.Printf("[agentstream] encode: %v", err)
		}
	})

	tracker := session.NewTracker()
	disp.Subscribe(tracker.Apply)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[agentstream] shutting down")
		cancel()
	}()

	if *mockMode {
		log.Println("[agentstream] replaying mock lifecycles")
		gen := mock.New(disp, cfg.StepInterval())
		gen.RunOnce(ctx)
		logSummary(tracker)
		return
	}

	tr := translate.New(cfg, disp)
	defer tr.Close()

	if *tailPath != "" {
		log.Printf("[agentstream] following %s as session %s", *tailPath, id)
		err := tailFile(ctx, *tailPath, func(chunk string) {
			tr.Feed(id, chunk)
		})
		tr.Flush(id)
		if err != nil {
			log.Fatalf("[agentstream] tail: %v", err)
		}
		logSummary(tracker)
		return
	}

	log.Printf("[agentstream] reading stdin as session %s", id)
	if err := feedReader(ctx, os.Stdin, func(chunk string) {
		tr.Feed(id, chunk)
	}); err != nil {
		log.Fatalf("[agentstream] stdin: %v", err)
	}
	tr.Flush(id)
	tr.ProcessExit(id, *exitCode)
	logSummary(tracker)
}

// feedReader streams r into feed in raw chunks until EOF or ctx ends.
func feedReader(ctx context.Context, r io.Reader, feed func(string)) error {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := r.Read(buf)
		if n > 0 {
			feed(string(buf[:n]))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func logSummary(tracker *session.Tracker) {
	for _, snap := range tracker.List() {
		if snap.FinishedAt != nil {
			log.Printf("[agentstream] session %s: %s (%s), %d lines, %d tools",
				snap.ID, snap.Phase, snap.Status, snap.Lines, snap.Tools)
			continue
		}
		log.Printf("[agentstream] session %s: %s, %d lines, %d tools",
			snap.ID, snap.Phase, snap.Lines, snap.Tools)
	}
}
