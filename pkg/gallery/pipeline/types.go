package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/NethermindEth/genaiterest/pkg/gallery/inference"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

var (
	ErrStallTimeout   = errors.New("stall timeout")
	ErrAlreadyStarted = errors.New("generation already started")
)

const (
	DefaultSubjectCount = 10
	DefaultColumns      = 5
	DefaultChatModel    = "llama-2-13b-chat"
	DefaultMaxTokens    = 512
	DefaultPollInterval = 100 * time.Millisecond
	DefaultRecheckDelay = 50 * time.Millisecond
	DefaultStallTimeout = 3 * time.Minute
	DefaultCfgScale     = 7.5
	DefaultSteps        = 20
)

type Options struct {
	// SubjectCount is the number of phrases asked for per category.
	SubjectCount int
	Columns      int

	ChatModel string
	MaxTokens int

	PollInterval time.Duration
	RecheckDelay time.Duration
	StallTimeout time.Duration

	CfgScale float64
	Steps    int
	// Seed zero lets the backend pick.
	Seed            int64
	SendStylePreset bool

	// Limiter paces image submissions when set.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.SubjectCount <= 0 {
		o.SubjectCount = DefaultSubjectCount
	}
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.ChatModel == "" {
		o.ChatModel = DefaultChatModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RecheckDelay <= 0 {
		o.RecheckDelay = DefaultRecheckDelay
	}
	if o.StallTimeout <= 0 {
		o.StallTimeout = DefaultStallTimeout
	}
	if o.CfgScale <= 0 {
		o.CfgScale = DefaultCfgScale
	}
	if o.Steps <= 0 {
		o.Steps = DefaultSteps
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// PromptRequest is a phrase waiting for its image to be requested.
type PromptRequest struct {
	Phrase   string
	Category style.Category
}

// PendingGeneration is an image request waiting to resolve. It stays on the
// result queue until it resolves or stalls.
type PendingGeneration struct {
	Future      *inference.Future[*inference.ImageResponse]
	Phrase      string
	Category    style.Category
	SubmittedAt time.Time
	// NotBefore is the earliest time the poller looks at it again.
	NotBefore time.Time
}

type Stage string

const (
	StagePrompt Stage = "prompt"
	StageSubmit Stage = "submit"
	StageImage  Stage = "image"
	StageRender Stage = "render"
)

// Failure records work that was given up on. Phrase is empty when the whole
// category failed before any phrase was extracted.
type Failure struct {
	Stage    Stage
	Category style.Category
	Phrase   string
	Err      error
}

func (f Failure) Error() string {
	if f.Phrase == "" {
		return fmt.Sprintf("%s %q: %v", f.Stage, f.Category, f.Err)
	}
	return fmt.Sprintf("%s %q %q: %v", f.Stage, f.Category, f.Phrase, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

type Report struct {
	Categories []style.Category
	// Submitted counts phrases handed to image generation.
	Submitted int
	Rendered  int
	Failures  []Failure
	Elapsed   time.Duration
}

// PhraseFailures counts failures attributed to a single phrase.
func (r *Report) PhraseFailures() int {
	n := 0
	for _, f := range r.Failures {
		if f.Phrase != "" {
			n++
		}
	}
	return n
}
