package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mailsift/internal/batch"
	"mailsift/internal/config"
	"mailsift/internal/journal"
	"mailsift/internal/llm"
	"mailsift/internal/logging"
	"mailsift/internal/mail"
	"mailsift/internal/prompts"
	"mailsift/internal/rerank"
	"mailsift/internal/services"
	"mailsift/internal/tasks"
)

const denoiseSystemPrompt = `You are an email cleaning assistant. Your job is to remove email metadata and keep only the actual message content.

Remove the following:
- Email signatures (e.g., "Sent from my iPhone", "Best regards, John Doe")
- Email headers and technical metadata
- Timestamps and date stamps (unless part of message content)
- Threading artifacts and reply indicators
- Automatic footers and disclaimers
- Unsubscribe links and promotional text

Keep the following:
- Actual message content and conversation
- Hyperlinks that are part of the message
- Questions, answers, and discussion points
- Technical details and code snippets

Return ONLY the cleaned message content. Keep the "=== MESSAGE N ===" separators.`

// Source yields messages from the mail provider.
type Source interface {
	Fetch(ctx context.Context, senderEmail string, maxThreads int) ([]mail.Message, error)
}

// Analyzer issues one synchronous text transformation.
type Analyzer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Structurer converts markdown analysis into machine-parseable text,
// degrading to the input on failure.
type Structurer interface {
	Structure(ctx context.Context, markdown string) llm.Structured
}

// Runner drives one task through fetch, rerank, batching, and the three-stage
// pipeline, recording results and progress against the task store.
type Runner struct {
	cfg        *config.Config
	store      *tasks.Store
	source     Source
	analyzer   Analyzer
	structurer Structurer
	catalog    *prompts.Catalog
	journal    *journal.Store
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner wires the orchestrator. The journal may be nil when artifact
// persistence is disabled.
func NewRunner(
	cfg *config.Config,
	store *tasks.Store,
	source Source,
	analyzer Analyzer,
	structurer Structurer,
	catalog *prompts.Catalog,
	artifacts *journal.Store,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		cfg:        cfg,
		store:      store,
		source:     source,
		analyzer:   analyzer,
		structurer: structurer,
		catalog:    catalog,
		journal:    artifacts,
		logger:     logging.NewComponentLogger(logger, "workflow"),
		now:        time.Now,
	}
}

// Run executes a task to a terminal state. It never returns an error; the
// task record is the single source of truth for the outcome. Callers are
// expected to invoke Run on a dedicated goroutine per task.
func (r *Runner) Run(ctx context.Context, task tasks.Task, sender config.Sender) {
	ctx = services.WithTaskID(ctx, task.ID)
	ctx = services.WithSender(ctx, sender.ID)
	logger := logging.WithContext(ctx, r.logger)

	started := r.now()
	logger.Info("workflow started",
		logging.String("sender_email", sender.Email),
		logging.Int("thread_limit", task.ItemLimit),
		logging.Int("batch_size", task.BatchSize),
	)

	if err := r.run(ctx, logger, task, sender); err != nil {
		r.fail(task.ID, err)
		logger.Error("workflow failed",
			logging.Error(err),
			logging.Duration("elapsed", r.now().Sub(started)),
		)
		return
	}
	logger.Info("workflow finished", logging.Duration("elapsed", r.now().Sub(started)))
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, task tasks.Task, sender config.Sender) error {
	// Resolve the prompt before touching the network so a bad key fails
	// the task without a wasted fetch.
	prompt, err := r.catalog.Lookup(sender.PromptKey)
	if err != nil {
		return err
	}

	overfetch := rerank.OverfetchLimit(
		task.ItemLimit,
		r.cfg.Workflow.OverfetchMultiplier,
		r.cfg.Workflow.OverfetchCap,
	)
	messages, err := r.source.Fetch(ctx, sender.Email, overfetch)
	if err != nil {
		return services.Wrap(services.ErrFetch, "workflow", "fetch", sender.Email, err)
	}
	if len(messages) == 0 {
		logger.Info("no messages found, completing task")
		r.complete(task.ID, "0/0", "no messages found from this sender")
		return nil
	}

	reranked := rerank.ByRecency(messages, task.ItemLimit)
	logger.Info("reranked threads",
		logging.Int("fetched_messages", len(messages)),
		logging.Int("retained_messages", len(reranked)),
		logging.Int("retained_threads", mail.ThreadCount(reranked)),
	)

	batches, err := batch.Split(reranked, task.BatchSize)
	if err != nil {
		return err
	}
	total := len(batches)

	for i, items := range batches {
		ordinal := i + 1
		batchCtx := services.WithBatch(ctx, ordinal)
		batchLogger := logging.WithContext(batchCtx, logger)

		result := r.runBatch(batchCtx, batchLogger, task, sender, prompt, items, ordinal, total)
		if !r.store.AppendResult(task.ID, result) {
			// Evicted mid-flight; nothing left to record against.
			batchLogger.Warn("task disappeared while processing, abandoning run")
			return nil
		}
		progress := fmt.Sprintf("%d/%d", ordinal, total)
		r.store.Apply(task.ID, tasks.Update{Progress: &progress})
		if result.Failed() {
			batchLogger.Error("batch failed", logging.String("reason", result.Failure.Message))
		} else {
			batchLogger.Info("batch completed", logging.String("progress", progress))
		}
	}

	r.complete(task.ID, fmt.Sprintf("%d/%d", total, total), "")
	return nil
}

// runBatch pushes one batch through the three pipeline stages. Stage 1 and 2
// failures sink the batch; stage 3 degrades to the raw analysis.
func (r *Runner) runBatch(
	ctx context.Context,
	logger *slog.Logger,
	task tasks.Task,
	sender config.Sender,
	prompt prompts.Prompt,
	items []mail.Message,
	ordinal, total int,
) tasks.BatchResult {
	result := tasks.BatchResult{
		Ordinal:     ordinal,
		Total:       total,
		ItemCount:   len(items),
		ThreadCount: mail.ThreadCount(items),
		ProcessedAt: r.now(),
	}

	combined := combine(items)
	r.record(ctx, logger, task, sender, ordinal, journal.KindCombined, combined)

	cleaned, err := r.analyzer.Complete(ctx, denoiseSystemPrompt, "Clean the following email content:\n\n"+combined)
	if err != nil {
		err = services.Wrap(services.ErrStage, "denoise", "complete", "", err)
		r.record(ctx, logger, task, sender, ordinal, journal.KindError, err.Error())
		result.Failure = &tasks.BatchFailure{Message: services.Details(err)}
		return result
	}
	r.record(ctx, logger, task, sender, ordinal, journal.KindDenoised, cleaned)

	analysis, err := r.analyzer.Complete(ctx, prompt.System, prompt.Format(cleaned))
	if err != nil {
		err = services.Wrap(services.ErrStage, "analyze", "complete", "", err)
		r.record(ctx, logger, task, sender, ordinal, journal.KindError, err.Error())
		result.Failure = &tasks.BatchFailure{Message: services.Details(err)}
		return result
	}
	r.record(ctx, logger, task, sender, ordinal, journal.KindAnalysis, analysis)

	structured := r.structurer.Structure(ctx, analysis)
	if structured.Degraded {
		logger.Warn("structuring degraded to raw analysis", logging.String("reason", structured.Reason))
	}
	r.record(ctx, logger, task, sender, ordinal, journal.KindStructured, structured.Text)

	result.Success = &tasks.BatchSuccess{
		Analysis: structured.Text,
		Raw:      analysis,
		Items:    append([]mail.Message(nil), items...),
	}
	return result
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, task tasks.Task, sender config.Sender, ordinal int, kind journal.Kind, content string) {
	err := r.journal.Record(ctx, journal.Entry{
		TaskID:   task.ID,
		SenderID: sender.ID,
		Batch:    ordinal,
		Kind:     kind,
		Content:  content,
	})
	if err != nil {
		logger.Warn("journal write failed", logging.String("kind", string(kind)), logging.Error(err))
	}
}

func (r *Runner) complete(taskID, progress, note string) {
	status := tasks.StatusCompleted
	update := tasks.Update{Status: &status, Progress: &progress}
	if note != "" {
		update.ErrorMessage = &note
	}
	r.store.Apply(taskID, update)
}

func (r *Runner) fail(taskID string, err error) {
	status := tasks.StatusFailed
	message := services.Details(err)
	r.store.Apply(taskID, tasks.Update{Status: &status, ErrorMessage: &message})
}
