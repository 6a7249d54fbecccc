package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
	"github.com/docuhub/docuhub-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, log *models.EmailLog) error
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	ListByProject(ctx context.Context, projectID string) ([]models.EmailLog, error)
}

type recipientStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListReviewers(ctx context.Context) ([]models.User, error)
}

// EmailProvider hands a rendered message to the external delivery service.
type EmailProvider interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailProviderFunc adapts plain functions to EmailProvider.
type EmailProviderFunc func(ctx context.Context, to, subject, body string) error

// Send implements EmailProvider.
func (f EmailProviderFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// NotificationService consumes lifecycle events and fans them out as email
// notifications through a background worker queue. Delivery is best-effort:
// a lost notification never rolls back the transition that caused it.
type NotificationService struct {
	store    notificationStore
	users    recipientStore
	provider EmailProvider
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewNotificationService constructs the sink and its worker queue. Call
// Start before publishing and Stop on shutdown.
func NewNotificationService(store notificationStore, users recipientStore, provider EmailProvider, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		provider = EmailProviderFunc(func(context.Context, string, string, string) error { return nil })
	}
	svc := &NotificationService{
		store:    store,
		users:    users,
		provider: provider,
		logger:   logger,
	}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("notifications", svc.handle, cfg)
	return svc
}

// Start launches the worker pool.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Publish implements the lifecycle event sink. Non-blocking: on a full or
// stopped queue the event is logged and dropped.
func (s *NotificationService) Publish(event models.ProjectEvent) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Type),
		Payload: event,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("dropping lifecycle event",
			zap.String("event", string(event.Type)),
			zap.String("project_id", event.ProjectID),
			zap.Error(err))
	}
}

// Trail returns the email notifications recorded for a project, newest
// first. Reviewers only.
func (s *NotificationService) Trail(ctx context.Context, projectID string, actor *models.JWTClaims) ([]models.EmailLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "notification trail is restricted to reviewers")
	}
	logs, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification trail")
	}
	return logs, nil
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.ProjectEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	switch event.Type {
	case models.EventProjectSubmitted:
		return s.announceSubmission(ctx, event)
	case models.EventProjectReviewed:
		return s.notifySubmitter(ctx, event)
	case models.EventProjectVersioned:
		return s.notifySubmitter(ctx, event)
	default:
		s.logger.Warn("unknown lifecycle event", zap.String("type", string(event.Type)))
		return nil
	}
}

// announceSubmission emails every active reviewer about a fresh submission
// and sends the submitter a receipt confirmation.
func (s *NotificationService) announceSubmission(ctx context.Context, event models.ProjectEvent) error {
	reviewers, err := s.users.ListReviewers(ctx)
	if err != nil {
		return fmt.Errorf("list reviewers: %w", err)
	}
	subject := fmt.Sprintf("Submission awaiting review: %s v%d", event.ProjectName, event.Version)
	body := fmt.Sprintf("Project %q version %d was submitted for approval.", event.ProjectName, event.Version)
	for _, reviewer := range reviewers {
		s.deliver(ctx, event, reviewer, models.TemplateAdminNewSubmission, subject, body)
	}

	owner, err := s.users.FindByID(ctx, event.SubmitterID)
	if err != nil {
		return fmt.Errorf("load submitter: %w", err)
	}
	s.deliver(ctx, event, *owner, models.TemplateProjectSubmitted,
		fmt.Sprintf("Submission received: %s v%d", event.ProjectName, event.Version),
		fmt.Sprintf("Your submission of %q version %d was received and is awaiting review.", event.ProjectName, event.Version))
	return nil
}

// notifySubmitter emails the project owner about a review outcome or a new
// version.
func (s *NotificationService) notifySubmitter(ctx context.Context, event models.ProjectEvent) error {
	owner, err := s.users.FindByID(ctx, event.SubmitterID)
	if err != nil {
		return fmt.Errorf("load submitter: %w", err)
	}

	var template, subject, body string
	switch {
	case event.Type == models.EventProjectVersioned:
		template = models.TemplateNewVersionCreated
		subject = fmt.Sprintf("New version created: %s v%d", event.ProjectName, event.Version)
		body = fmt.Sprintf("Version %d of %q is ready for drafting.", event.Version, event.ProjectName)
	case event.ReviewAction == models.ReviewApprove:
		template = models.TemplateProjectApproved
		subject = fmt.Sprintf("Approved: %s v%d", event.ProjectName, event.Version)
		body = fmt.Sprintf("Project %q version %d was approved and endorsed.", event.ProjectName, event.Version)
	case event.ReviewAction == models.ReviewReject:
		template = models.TemplateProjectRejected
		subject = fmt.Sprintf("Rejected: %s v%d", event.ProjectName, event.Version)
		body = fmt.Sprintf("Project %q version %d was rejected. Reviewer comments: %s", event.ProjectName, event.Version, event.Comments)
	default:
		template = models.TemplateRevisionRequired
		subject = fmt.Sprintf("Revision requested: %s v%d", event.ProjectName, event.Version)
		body = fmt.Sprintf("Project %q version %d needs revision. Reviewer comments: %s", event.ProjectName, event.Version, event.Comments)
	}
	s.deliver(ctx, event, *owner, template, subject, body)
	return nil
}

// deliver logs the notification, hands it to the provider and records the
// outcome on the same row.
func (s *NotificationService) deliver(ctx context.Context, event models.ProjectEvent, recipient models.User, template, subject, body string) {
	log := &models.EmailLog{
		ProjectID:      &event.ProjectID,
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.FullName,
		TemplateType:   template,
		Subject:        subject,
	}
	if err := s.store.Create(ctx, log); err != nil {
		s.logger.Error("failed to record email log", zap.Error(err))
		return
	}
	if err := s.provider.Send(ctx, recipient.Email, subject, body); err != nil {
		s.logger.Warn("email delivery failed",
			zap.String("recipient", recipient.Email),
			zap.String("template", template),
			zap.Error(err))
		if markErr := s.store.MarkFailed(ctx, log.ID, err.Error()); markErr != nil {
			s.logger.Error("failed to mark email failed", zap.Error(markErr))
		}
		return
	}
	if err := s.store.MarkSent(ctx, log.ID); err != nil {
		s.logger.Error("failed to mark email sent", zap.Error(err))
	}
}
