// Package agentstream converts raw CLI-agent output into typed
// lifecycle events a console can render: run start/finish, text
// deltas, tool steps, and waiting-for-human approval prompts.
package agentstream

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agent-console/agentstream/internal/classify"
	"github.com/agent-console/agentstream/internal/config"
	"github.com/agent-console/agentstream/internal/dispatch"
	"github.com/agent-console/agentstream/internal/event"
	"github.com/agent-console/agentstream/internal/metrics"
	"github.com/agent-console/agentstream/internal/mock"
	"github.com/agent-console/agentstream/internal/segment"
	"github.com/agent-console/agentstream/internal/session"
	"github.com/agent-console/agentstream/internal/translate"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Event = event.Event

type EventType = event.Type

type Status = event.Status

type Sink = event.Sink

type SinkFunc = event.SinkFunc

type RunStarted = event.RunStarted

type TextMessageContent = event.TextMessageContent

type StepStarted = event.StepStarted

type WaitingForHuman = event.WaitingForHuman

type RunFinished = event.RunFinished

type ApprovalPayload = event.ApprovalPayload

type ApprovalProps = event.ApprovalProps

type ApprovalAction = event.ApprovalAction

type HumanResponse = event.HumanResponse

type ActionType = event.ActionType

const (
	TypeRunStarted         = event.TypeRunStarted
	TypeTextMessageContent = event.TypeTextMessageContent
	TypeStepStarted        = event.TypeStepStarted
	TypeWaitingForHuman    = event.TypeWaitingForHuman
	TypeRunFinished        = event.TypeRunFinished

	StatusSuccess = event.StatusSuccess
	StatusFailed  = event.StatusFailed

	ActionApprove      = event.ActionApprove
	ActionReject       = event.ActionReject
	ActionProvideInput = event.ActionProvideInput
)

type Config = config.Config

type Segmenter = segment.Segmenter

type SegmentHandler = segment.Handler

type SegmentHandlerFuncs = segment.HandlerFuncs

type Classifier = classify.Classifier

type Translator = translate.Translator

type Dispatcher = dispatch.Dispatcher

type Subscriber = dispatch.Subscriber

type Tracker = session.Tracker

type Snapshot = session.Snapshot

type Phase = session.Phase

const (
	PhaseRunning         = session.Running
	PhaseWaitingForHuman = session.WaitingForHuman
	PhaseFinished        = session.Finished
)

type MockGenerator = mock.Generator

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a YAML config file, applying defaults for absent fields.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher { return dispatch.New() }

// NewTracker returns an empty session tracker.
func NewTracker() *Tracker { return session.NewTracker() }

// NewTranslator builds a chunk-in, events-out translator publishing to sink.
func NewTranslator(cfg *Config, sink Sink) *Translator { return translate.New(cfg, sink) }

// NewSegmenter builds a standalone line segmenter.
func NewSegmenter(flushAfter time.Duration, h SegmentHandler) *Segmenter {
	return segment.New(flushAfter, h)
}

// NewClassifier builds a standalone pattern classifier publishing to sink.
func NewClassifier(agentName string, sink Sink) *Classifier {
	return classify.New(agentName, sink)
}

// NewMockGenerator builds a canned lifecycle replayer for demos.
func NewMockGenerator(sink Sink, stepInterval time.Duration) *MockGenerator {
	return mock.New(sink, stepInterval)
}

// Pipeline bundles the usual assembly: a translator publishing into a
// dispatcher, with a session tracker subscribed.
type Pipeline struct {
	Translator *Translator
	Dispatcher *Dispatcher
	Tracker    *Tracker
}

// NewPipeline assembles a ready-to-feed pipeline from cfg.
func NewPipeline(cfg *Config) *Pipeline {
	disp := dispatch.New()
	tracker := session.NewTracker()
	disp.Subscribe(tracker.Apply)
	return &Pipeline{
		Translator: translate.New(cfg, disp),
		Dispatcher: disp,
		Tracker:    tracker,
	}
}

// Subscribe registers fn for every event the pipeline emits.
func (p *Pipeline) Subscribe(fn Subscriber) string { return p.Dispatcher.Subscribe(fn) }

// Close drops buffered partials and detaches all subscribers.
func (p *Pipeline) Close() {
	p.Translator.Close()
	p.Dispatcher.Close()
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }

func RegisterMetricsDefault() error { return metrics.Register(prometheus.DefaultRegisterer) }

// MetricsHandler exposes the collector registry; the host mounts the route.
func MetricsHandler() http.Handler { return metrics.Handler() }
