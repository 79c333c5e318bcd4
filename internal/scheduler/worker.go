package scheduler

import (
	"context"
	"fmt"

	"revenue_radar_backend/internal/email"
	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/platform/config"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// DigestRunner produces a full analysis report for an organization.
type DigestRunner interface {
	RunFull(ctx context.Context, orgID uuid.UUID, includeAI bool) (domain.FullReport, error)
}

// OrgLister enumerates organizations with stored snapshot data.
type OrgLister interface {
	ListOrganizations(ctx context.Context) ([]uuid.UUID, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	client    *Client
	runner    DigestRunner
	orgs      OrgLister
	sender    email.Sender
	metrics   *metrics.Metrics
	recipient string
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner DigestRunner, orgs OrgLister, sender email.Sender, m *metrics.Metrics, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		client:    client,
		runner:    runner,
		orgs:      orgs,
		sender:    sender,
		metrics:   m,
		recipient: cfg.GetDigestRecipient(),
		log:       log,
	}

	mux.HandleFunc(TaskDigestSweep, w.handleDigestSweep)
	mux.HandleFunc(TaskAnalysisDigest, w.handleAnalysisDigest)

	return w, nil
}

// handleDigestSweep fans out one digest task per organization with data.
func (w *Worker) handleDigestSweep(ctx context.Context, _ *asynq.Task) error {
	orgIDs, err := w.orgs.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}

	for _, orgID := range orgIDs {
		err := w.client.EnqueueDigest(ctx, AnalysisDigestPayload{
			OrganizationID: orgID.String(),
			Recipient:      w.recipient,
		})
		if err != nil {
			w.log.Warn("digest enqueue failed", "org", orgID, "error", err)
		}
	}
	return nil
}

// handleAnalysisDigest runs the analysis and emails the digest for one org.
// Orgs with a clean report are skipped; there is nothing to report.
func (w *Worker) handleAnalysisDigest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAnalysisDigestPayload(task)
	if err != nil {
		return err
	}
	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}
	if payload.Recipient == "" || w.sender == nil {
		w.log.DigestSent(payload.Recipient, 0, false, "no recipient or sender configured")
		return nil
	}

	report, err := w.runner.RunFull(ctx, orgID, false)
	if err != nil {
		return fmt.Errorf("digest analysis for %s: %w", orgID, err)
	}
	if report.Leaks.Summary.Total == 0 {
		w.log.DigestSent(payload.Recipient, 0, false, "no leaks to report")
		return nil
	}

	critical := report.Leaks.Summary.BySeverity[domain.SeverityCritical]
	if err := w.sender.SendLeakDigest(ctx, payload.Recipient, report); err != nil {
		w.log.DigestSent(payload.Recipient, critical, false, err.Error())
		return fmt.Errorf("send digest: %w", err)
	}

	if w.metrics != nil {
		w.metrics.DigestsSent.Inc()
	}
	w.log.DigestSent(payload.Recipient, critical, true, "")
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) Close() error {
	return w.client.Close()
}
