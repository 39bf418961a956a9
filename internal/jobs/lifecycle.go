package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"certlife-backend/internal/certificates"
	"certlife-backend/internal/consultants"
	"certlife-backend/internal/documents"
	"certlife-backend/internal/models"
	"certlife-backend/internal/notifications"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LifecyclePayload is the wire form of a revoke/reissue/issue request.
// Consultant carries the convenience identifier: digits resolve by primary
// key, an address containing @ resolves by email.
type LifecyclePayload struct {
	Consultant       string                 `json:"consultant"`
	Reason           string                 `json:"reason"`
	ActorID          *uint                  `json:"actor_id,omitempty"`
	ActorName        string                 `json:"actor_name,omitempty"`
	NotifyConsultant bool                   `json:"notify_consultant"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// Service orchestrates the certificate lifecycle: status transition, document
// regeneration, in-app notification, and dispatcher enqueue. Each operation
// runs its database work in one transaction; the notification enqueue happens
// strictly after commit.
type Service struct {
	DB            *gorm.DB
	Queue         Queue
	Codec         *certificates.TokenCodec
	Renderer      documents.Renderer
	Storage       documents.Storage
	VerifyBaseURL string
}

// Revoke moves the consultant's latest certificate to revoked and notifies
// them. A missing consultant or missing certificate is a logged no-op, not an
// error: both are permanent conditions the worker must not retry.
func (s *Service) Revoke(ctx context.Context, p LifecyclePayload) error {
	consultant, ok, err := s.resolveConsultant(p.Consultant, JobRevoke)
	if err != nil || !ok {
		return err
	}

	taskCtx := taskContext(JobRevoke, p.Metadata)
	var cert *models.Certificate

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		cert, txErr = certificates.UpdateStatus(tx, consultant, certificates.TransitionParams{
			Status:    models.CertificateRevoked,
			ActorID:   p.ActorID,
			Reason:    p.Reason,
			Timestamp: time.Now().UTC(),
			Context:   taskCtx,
		})
		if txErr != nil {
			return txErr
		}
		if cert == nil {
			return nil
		}
		if p.NotifyConsultant {
			message := "Your consultant certificate has been revoked."
			if p.Reason != "" {
				message += " Reason: " + p.Reason
			}
			return notifyInApp(tx, consultant, message)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if cert == nil {
		return nil
	}

	if p.NotifyConsultant {
		s.enqueueNotify(ctx, consultant.ID, notifications.EventRevoked, cert.ID, p)
	}

	log.Info().
		Uint("consultant_id", consultant.ID).
		Uint("certificate_id", cert.ID).
		Msg("Certificate revoked")
	return nil
}

// Reissue supersedes the current certificate: the old row becomes reissued,
// a brand-new valid row is created with a fresh issue instant, and the
// rendered document is replaced.
func (s *Service) Reissue(ctx context.Context, p LifecyclePayload) error {
	consultant, ok, err := s.resolveConsultant(p.Consultant, JobReissue)
	if err != nil || !ok {
		return err
	}

	taskCtx := taskContext(JobReissue, p.Metadata)
	var previous, fresh *models.Certificate

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		previous, txErr = certificates.UpdateStatus(tx, consultant, certificates.TransitionParams{
			Status:    models.CertificateReissued,
			ActorID:   p.ActorID,
			Reason:    p.Reason,
			Timestamp: time.Now().UTC(),
			Context:   taskCtx,
		})
		if txErr != nil {
			return txErr
		}
		if previous == nil {
			return nil
		}

		fresh, txErr = s.issueFresh(tx, consultant, p.ActorName)
		if txErr != nil {
			return txErr
		}

		if p.NotifyConsultant {
			message := "Your consultant certificate has been reissued with updated details."
			if p.Reason != "" {
				message += " Reason: " + p.Reason
			}
			return notifyInApp(tx, consultant, message)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if previous == nil {
		return nil
	}

	if p.NotifyConsultant {
		s.enqueueNotify(ctx, consultant.ID, notifications.EventReissued, fresh.ID, p)
	}

	log.Info().
		Uint("consultant_id", consultant.ID).
		Uint("certificate_id", fresh.ID).
		Uint("previous_certificate_id", previous.ID).
		Msg("Issued replacement certificate")
	return nil
}

// Issue creates the consultant's certificate after approval. Any prior valid
// certificate is first transitioned away so the single-active invariant
// holds.
func (s *Service) Issue(ctx context.Context, p LifecyclePayload) error {
	consultant, ok, err := s.resolveConsultant(p.Consultant, "certificate.issue")
	if err != nil || !ok {
		return err
	}

	taskCtx := taskContext("certificate.issue", p.Metadata)
	var fresh *models.Certificate

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := &certificates.Store{DB: tx}
		active, txErr := store.ActiveForConsultant(consultant.ID)
		if txErr != nil {
			return txErr
		}
		if active != nil {
			reason := p.Reason
			if reason == "" {
				reason = "Superseded by new issuance"
			}
			if _, txErr = certificates.UpdateStatus(tx, consultant, certificates.TransitionParams{
				Status:    models.CertificateReissued,
				ActorID:   p.ActorID,
				Reason:    reason,
				Timestamp: time.Now().UTC(),
				Context:   taskCtx,
			}); txErr != nil {
				return txErr
			}
		}

		fresh, txErr = s.issueFresh(tx, consultant, p.ActorName)
		if txErr != nil {
			return txErr
		}

		if p.NotifyConsultant {
			return notifyInApp(tx, consultant, "Your consultant certificate has been issued.")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if p.NotifyConsultant {
		s.enqueueNotify(ctx, consultant.ID, notifications.EventIssued, fresh.ID, p)
	}

	log.Info().
		Uint("consultant_id", consultant.ID).
		Uint("certificate_id", fresh.ID).
		Msg("Certificate issued")
	return nil
}

// issueFresh creates the new valid history row, replaces the rendered
// document, and updates the consultant's current-certificate pointer fields.
// The document file is written before the consultant row: a crash in between
// leaves an unreferenced blob, never inconsistent state.
func (s *Service) issueFresh(tx *gorm.DB, consultant *models.Consultant, actorName string) (*models.Certificate, error) {
	issuedAt := time.Now().UTC()
	fresh := &models.Certificate{
		ConsultantID: consultant.ID,
		Status:       models.CertificateValid,
		IssuedAt:     &issuedAt,
		StatusSetAt:  issuedAt,
		ValidAt:      &issuedAt,
	}
	store := &certificates.Store{DB: tx}
	if err := store.Create(fresh); err != nil {
		return nil, err
	}

	if err := s.Storage.Remove(consultant.CertificateDocument); err != nil {
		return nil, err
	}

	verificationURL, err := certificates.BuildVerificationURL(s.VerifyBaseURL, s.Codec, consultant, fresh)
	if err != nil {
		return nil, err
	}
	pdf, err := s.Renderer.Render(consultant, issuedAt, verificationURL, actorName)
	if err != nil {
		return nil, err
	}
	path, err := s.Storage.Write(consultant.ID, pdf)
	if err != nil {
		return nil, err
	}

	consultant.CertificateGeneratedAt = &issuedAt
	consultant.CertificateDocument = path
	if err := tx.Save(consultant).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *Service) resolveConsultant(identifier, action string) (*models.Consultant, bool, error) {
	ref, err := consultants.ParseRef(identifier)
	if err != nil {
		log.Warn().Str("identifier", identifier).Str("action", action).
			Msg("Unresolvable consultant identifier")
		return nil, false, nil
	}
	consultant, err := ref.Resolve(s.DB)
	if err != nil {
		if errors.Is(err, consultants.ErrNotFound) {
			log.Warn().Str("identifier", identifier).Str("action", action).
				Msg("Consultant not found for lifecycle job")
			return nil, false, nil
		}
		return nil, false, err
	}
	return consultant, true, nil
}

// enqueueNotify hands the dispatch to the queue after the transaction has
// committed. An enqueue failure is logged, not retried here: losing the
// notification beats dispatching for a rolled-back transition.
func (s *Service) enqueueNotify(ctx context.Context, consultantID uint, event string, certificateID uint, p LifecyclePayload) {
	metadata := taskContext("certificate."+event+".notification", p.Metadata)
	params := notifications.SendParams{
		ConsultantID:  consultantID,
		Event:         event,
		CertificateID: &certificateID,
		Reason:        p.Reason,
		ActorID:       p.ActorID,
		Metadata:      metadata,
	}
	payload, err := json.Marshal(params)
	if err != nil {
		log.Error().Err(err).Uint("consultant_id", consultantID).Msg("Failed to encode notification job")
		return
	}
	if err := s.Queue.Enqueue(ctx, Job{Name: JobNotify, Payload: payload}); err != nil {
		log.Error().Err(err).
			Uint("consultant_id", consultantID).
			Str("event", event).
			Msg("Failed to enqueue certificate notification")
	}
}

func notifyInApp(tx *gorm.DB, consultant *models.Consultant, message string) error {
	notification := models.Notification{
		ConsultantID: consultant.ID,
		Kind:         models.NotificationKindCertificate,
		Message:      message,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return err
	}
	log.Info().
		Uint("consultant_id", consultant.ID).
		Uint("notification_id", notification.ID).
		Msg("In-app notification recorded")
	return nil
}

// taskContext is the traceability metadata attached to audit entries and
// notification payloads produced by one job invocation.
func taskContext(taskName string, extra map[string]interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"source":    "queue",
		"task_name": taskName,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}

// EnqueueRevoke places a revoke job on the queue.
func EnqueueRevoke(ctx context.Context, q Queue, p LifecyclePayload) error {
	return enqueueLifecycle(ctx, q, JobRevoke, p)
}

// EnqueueReissue places a reissue job on the queue.
func EnqueueReissue(ctx context.Context, q Queue, p LifecyclePayload) error {
	return enqueueLifecycle(ctx, q, JobReissue, p)
}

func enqueueLifecycle(ctx context.Context, q Queue, name string, p LifecyclePayload) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return q.Enqueue(ctx, Job{Name: name, Payload: payload})
}

// RegisterHandlers binds the lifecycle and notification jobs to the worker.
func RegisterHandlers(w *Worker, s *Service, d *notifications.Dispatcher) {
	w.Register(JobRevoke, func(ctx context.Context, raw json.RawMessage) error {
		var p LifecyclePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.Revoke(ctx, p)
	})
	w.Register(JobReissue, func(ctx context.Context, raw json.RawMessage) error {
		var p LifecyclePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		return s.Reissue(ctx, p)
	})
	w.Register(JobNotify, func(ctx context.Context, raw json.RawMessage) error {
		var p notifications.SendParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		_, err := d.Send(ctx, p)
		return err
	})
}
