package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/NethermindEth/genaiterest/pkg/gallery/codec"
	"github.com/NethermindEth/genaiterest/pkg/gallery/inference"
	"github.com/NethermindEth/genaiterest/pkg/gallery/queue"
	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
	"github.com/NethermindEth/genaiterest/pkg/gallery/subject"
)

const (
	systemInstruction  = "Below is an instruction that describes a task. Write a response that appropriately completes the request."
	subjectInstruction = "Provide a consise list of %d %s photography subjects, 12 words per item at most"
)

// Coordinator runs one gallery generation. It owns both work queues; the
// client may be shared between coordinators.
type Coordinator struct {
	client inference.Client
	opts   Options
	logger *slog.Logger

	prompts *queue.Queue[PromptRequest]
	results *queue.Queue[PendingGeneration]
	grid    *Grid

	started atomic.Bool

	mu        sync.Mutex
	submitted int
	rendered  int
	failures  []Failure
}

func NewCoordinator(client inference.Client, opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		client:  client,
		opts:    opts,
		logger:  opts.Logger,
		prompts: queue.New[PromptRequest](),
		results: queue.New[PendingGeneration](),
		grid:    NewGrid(opts.Columns),
	}
}

// Generate fans out one subject request per category, turns every extracted
// phrase into an image request and renders images as they complete. It
// returns once both queues are drained. Per-item failures end up in the
// report, not in the returned error.
func (c *Coordinator) Generate(ctx context.Context, categories []style.Category, renderer Renderer) (*Report, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	for _, category := range categories {
		if _, err := style.Lookup(category); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return c.launch(gctx) })
	g.Go(func() error { return c.poll(gctx, renderer) })

	err := c.fanOut(gctx, categories)
	if err == nil {
		err = c.prompts.Join(gctx)
	}
	if err == nil {
		err = c.results.Join(gctx)
	}

	cancel()
	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		err = werr
	}

	report := c.report(categories, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		return report, err
	}

	c.logger.Info("gallery generated",
		"categories", len(categories),
		"submitted", report.Submitted,
		"rendered", report.Rendered,
		"failures", len(report.Failures),
		"elapsed", report.Elapsed,
	)

	return report, nil
}

// Backlog reports the unfinished item counts of both queues.
func (c *Coordinator) Backlog() (prompts int, results int) {
	return c.prompts.Unfinished(), c.results.Unfinished()
}

func (c *Coordinator) Columns() int {
	return c.grid.Columns()
}

type pendingSubjects struct {
	future      *inference.Future[openai.ChatCompletionResponse]
	category    style.Category
	submittedAt time.Time
}

func (c *Coordinator) fanOut(ctx context.Context, categories []style.Category) error {
	pending := make([]pendingSubjects, 0, len(categories))
	for _, category := range categories {
		future, err := c.client.SubmitChatCompletion(ctx, c.chatRequest(category))
		if err != nil {
			c.fail(Failure{Stage: StagePrompt, Category: category, Err: err})
			continue
		}
		pending = append(pending, pendingSubjects{
			future:      future,
			category:    category,
			submittedAt: time.Now(),
		})
	}

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		pending = c.sweep(pending)
		if len(pending) == 0 {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sweep enqueues the phrases of every resolved subject request and returns
// the ones still outstanding.
func (c *Coordinator) sweep(pending []pendingSubjects) []pendingSubjects {
	outstanding := pending[:0]
	for _, p := range pending {
		if !p.future.Ready() {
			if time.Since(p.submittedAt) > c.opts.StallTimeout {
				c.fail(Failure{Stage: StagePrompt, Category: p.category, Err: ErrStallTimeout})
				continue
			}
			outstanding = append(outstanding, p)
			continue
		}

		resp, err := p.future.Result()
		if err != nil {
			c.fail(Failure{Stage: StagePrompt, Category: p.category, Err: err})
			continue
		}

		content, err := inference.ChatContent(resp)
		if err != nil {
			c.fail(Failure{Stage: StagePrompt, Category: p.category, Err: err})
			continue
		}

		c.enqueueSubjects(p.category, content)
	}
	return outstanding
}

func (c *Coordinator) enqueueSubjects(category style.Category, content string) {
	logger := c.logger.With("category", category)

	phrases, skipped := subject.Lines(content)
	for _, err := range skipped {
		logger.Debug("skipped subject line", "error", err)
	}
	if len(phrases) > c.opts.SubjectCount {
		phrases = phrases[:c.opts.SubjectCount]
	}
	if len(phrases) == 0 {
		logger.Warn("no subjects extracted")
		return
	}

	logger.Debug("subjects extracted", "count", len(phrases))
	for _, phrase := range phrases {
		c.prompts.Put(PromptRequest{Phrase: phrase, Category: category})
	}
}

func (c *Coordinator) chatRequest(category style.Category) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.opts.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(subjectInstruction, c.opts.SubjectCount, category)},
		},
		MaxTokens: c.opts.MaxTokens,
		Stream:    false,
	}
}

func (c *Coordinator) launch(ctx context.Context) error {
	for {
		req, err := c.prompts.Get(ctx)
		if err != nil {
			return err
		}

		c.submit(ctx, req)

		if err := c.prompts.TaskDone(); err != nil {
			return err
		}
	}
}

func (c *Coordinator) submit(ctx context.Context, req PromptRequest) {
	logger := c.logger.With("category", req.Category, "phrase", req.Phrase)

	c.mu.Lock()
	c.submitted++
	c.mu.Unlock()

	if c.opts.Limiter != nil {
		if err := c.opts.Limiter.Wait(ctx); err != nil {
			c.fail(Failure{Stage: StageSubmit, Category: req.Category, Phrase: req.Phrase, Err: err})
			return
		}
	}

	imageReq, err := c.imageRequest(req)
	if err != nil {
		c.fail(Failure{Stage: StageSubmit, Category: req.Category, Phrase: req.Phrase, Err: err})
		return
	}

	future, err := c.client.SubmitImageGeneration(ctx, imageReq)
	if err != nil {
		c.fail(Failure{Stage: StageSubmit, Category: req.Category, Phrase: req.Phrase, Err: err})
		return
	}

	logger.Debug("image requested")
	c.results.Put(PendingGeneration{
		Future:      future,
		Phrase:      req.Phrase,
		Category:    req.Category,
		SubmittedAt: time.Now(),
	})
}

func (c *Coordinator) imageRequest(req PromptRequest) (inference.ImageRequest, error) {
	def, err := style.Lookup(req.Category)
	if err != nil {
		return inference.ImageRequest{}, err
	}

	imageReq := inference.ImageRequest{
		Prompt:         def.Render(req.Phrase),
		NegativePrompt: def.NegativePrompt,
		CfgScale:       c.opts.CfgScale,
		Steps:          c.opts.Steps,
		Seed:           c.opts.Seed,
	}
	if c.opts.SendStylePreset {
		imageReq.StylePreset = def.Name
	}
	return imageReq, nil
}

func (c *Coordinator) poll(ctx context.Context, renderer Renderer) error {
	for {
		item, err := c.results.Get(ctx)
		if err != nil {
			return err
		}

		if wait := time.Until(item.NotBefore); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		switch {
		case item.Future.Ready():
			c.complete(ctx, item, renderer)
		case time.Since(item.SubmittedAt) > c.opts.StallTimeout:
			c.fail(Failure{Stage: StageImage, Category: item.Category, Phrase: item.Phrase, Err: ErrStallTimeout})
		default:
			item.NotBefore = time.Now().Add(c.opts.RecheckDelay)
			c.results.Put(item)
		}

		// The re-put above lands before this, so Join cannot see a false drain.
		if err := c.results.TaskDone(); err != nil {
			return err
		}
	}
}

func (c *Coordinator) complete(ctx context.Context, item PendingGeneration, renderer Renderer) {
	logger := c.logger.With("category", item.Category, "phrase", item.Phrase)

	resp, err := item.Future.Result()
	if err != nil {
		c.fail(Failure{Stage: StageImage, Category: item.Category, Phrase: item.Phrase, Err: err})
		return
	}

	encoded, err := resp.Image()
	if err != nil {
		c.fail(Failure{Stage: StageImage, Category: item.Category, Phrase: item.Phrase, Err: err})
		return
	}

	img, err := codec.Decode(encoded)
	if err != nil {
		c.fail(Failure{Stage: StageImage, Category: item.Category, Phrase: item.Phrase, Err: err})
		return
	}

	cell := c.grid.Next(item.Phrase, item.Category, img)
	if err := renderer.Render(ctx, cell); err != nil {
		c.fail(Failure{Stage: StageRender, Category: item.Category, Phrase: item.Phrase, Err: err})
		return
	}
	c.grid.Commit(cell)

	logger.Debug("image rendered", "slot", cell.Slot, "column", cell.Column, "latency", time.Since(item.SubmittedAt))

	c.mu.Lock()
	c.rendered++
	c.mu.Unlock()
}

func (c *Coordinator) fail(f Failure) {
	c.logger.Warn("generation failed", "stage", f.Stage, "category", f.Category, "phrase", f.Phrase, "error", f.Err)

	c.mu.Lock()
	c.failures = append(c.failures, f)
	c.mu.Unlock()
}

func (c *Coordinator) report(categories []style.Category, elapsed time.Duration) *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Report{
		Categories: append([]style.Category(nil), categories...),
		Submitted:  c.submitted,
		Rendered:   c.rendered,
		Failures:   append([]Failure(nil), c.failures...),
		Elapsed:    elapsed,
	}
}
