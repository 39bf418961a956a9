// Package notifications renders and delivers certificate lifecycle messages
// over email and SMS, with per-channel delivery status and an observer hook
// for audit recording.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"certlife-backend/internal/certificates"
	"certlife-backend/internal/documents"
	"certlife-backend/internal/models"
	"certlife-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	// ErrUnsupportedEvent is a caller bug: the event is not a lifecycle
	// event. Never retried.
	ErrUnsupportedEvent = errors.New("unsupported certificate notification event")

	// ErrDeliveryFailed wraps an email transport failure. The job worker
	// treats it as transient and retries the whole dispatch.
	ErrDeliveryFailed = errors.New("email delivery failed")
)

// Per-channel delivery statuses.
const (
	StatusSent     = "sent"
	StatusSkipped  = "skipped"
	StatusDisabled = "disabled"
	StatusFailed   = "failed"
)

// Attempt describes one channel delivery attempt, success or failure.
type Attempt struct {
	ConsultantID  uint
	Event         string
	Channel       string
	Status        string
	CertificateID *uint
	Reason        string
	ActorID       *uint
	Metadata      map[string]interface{}
	Err           error
}

// AttemptObserver receives every channel attempt. Replaces the original
// publish/subscribe signal with an explicit callback.
type AttemptObserver func(Attempt)

// SendParams is the dispatch request. CertificateID nil means "the most
// recent certificate"; SendSMS nil defers to configuration.
type SendParams struct {
	ConsultantID  uint                   `json:"consultant_id"`
	Event         string                 `json:"event"`
	CertificateID *uint                  `json:"certificate_id,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	ActorID       *uint                  `json:"actor_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	SendSMS       *bool                  `json:"send_sms,omitempty"`
}

// Result reports what happened per channel.
type Result struct {
	Email string `json:"email"`
	SMS   string `json:"sms"`
}

// Dispatcher renders and sends lifecycle notifications. Email failure aborts
// the dispatch with a retryable error; SMS failure is recorded and absorbed.
type Dispatcher struct {
	DB            *gorm.DB
	Email         EmailSender
	SMS           []SMSSender
	SMSEnabled    bool
	Templates     map[string]Template
	Codec         *certificates.TokenCodec
	VerifyBaseURL string
	OnAttempt     AttemptObserver
}

func (d *Dispatcher) templates() map[string]Template {
	if d.Templates != nil {
		return d.Templates
	}
	return defaultTemplates
}

// Send delivers the notification for one lifecycle event.
func (d *Dispatcher) Send(ctx context.Context, p SendParams) (Result, error) {
	event := strings.ToLower(strings.TrimSpace(p.Event))
	tmpl, ok := d.templates()[event]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedEvent, p.Event)
	}

	var consultant models.Consultant
	if err := d.DB.First(&consultant, p.ConsultantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warn().
				Uint("consultant_id", p.ConsultantID).
				Str("event", event).
				Msg("Skipping certificate notification for missing consultant")
			return Result{Email: StatusSkipped, SMS: StatusSkipped}, nil
		}
		return Result{}, err
	}

	cert, err := d.resolveCertificate(&consultant, p.CertificateID)
	if err != nil {
		return Result{}, err
	}

	reason := strings.TrimSpace(p.Reason)
	renderCtx := d.buildContext(&consultant, cert, event, reason)

	metadata := map[string]interface{}{"event": event}
	for k, v := range p.Metadata {
		metadata[k] = v
	}
	var certID *uint
	if cert != nil {
		certID = &cert.ID
		if _, ok := metadata["certificate_id"]; !ok {
			metadata["certificate_id"] = cert.ID
		}
	}

	attempt := func(channel, status string, attemptErr error) {
		if d.OnAttempt == nil {
			return
		}
		d.OnAttempt(Attempt{
			ConsultantID:  consultant.ID,
			Event:         event,
			Channel:       channel,
			Status:        status,
			CertificateID: certID,
			Reason:        reason,
			ActorID:       p.ActorID,
			Metadata:      metadata,
			Err:           attemptErr,
		})
	}

	emailStatus, emailErr := d.sendEmail(ctx, &consultant, tmpl, renderCtx)
	attempt("email", emailStatus, emailErr)
	if emailErr != nil {
		log.Error().Err(emailErr).
			Uint("consultant_id", consultant.ID).
			Str("event", event).
			Str("channel", "email").
			Str("reason", reason).
			Msg("Failed to send certificate notification email")
		return Result{Email: emailStatus, SMS: StatusSkipped},
			fmt.Errorf("%w: %v", ErrDeliveryFailed, emailErr)
	}
	if emailStatus == StatusSent {
		log.Info().
			Uint("consultant_id", consultant.ID).
			Str("event", event).
			Str("channel", "email").
			Msg("Sent certificate notification email")
	}

	smsStatus, smsErr := d.sendSMS(ctx, &consultant, tmpl, renderCtx, p.SendSMS)
	attempt("sms", smsStatus, smsErr)
	if smsErr != nil {
		// SMS failure never blocks the dispatch; it is recorded and absorbed.
		log.Error().Err(smsErr).
			Uint("consultant_id", consultant.ID).
			Str("event", event).
			Str("channel", "sms").
			Str("reason", reason).
			Msg("Failed to send certificate notification SMS")
	} else if smsStatus == StatusSent {
		log.Info().
			Uint("consultant_id", consultant.ID).
			Str("event", event).
			Str("channel", "sms").
			Msg("Sent certificate notification SMS")
	}

	return Result{Email: emailStatus, SMS: smsStatus}, nil
}

func (d *Dispatcher) resolveCertificate(consultant *models.Consultant, certificateID *uint) (*models.Certificate, error) {
	store := &certificates.Store{DB: d.DB}
	if certificateID != nil {
		var cert models.Certificate
		err := d.DB.First(&cert, *certificateID).Error
		if err == nil {
			return &cert, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	return store.LatestForConsultant(consultant.ID)
}

func (d *Dispatcher) buildContext(consultant *models.Consultant, cert *models.Certificate, event, reason string) map[string]string {
	issuedOn := ""
	if cert != nil && cert.IssuedAt != nil {
		issuedOn = documents.FormatDate(*cert.IssuedAt)
	} else if consultant.CertificateGeneratedAt != nil {
		issuedOn = documents.FormatDate(*consultant.CertificateGeneratedAt)
	}

	statusOn := ""
	if cert != nil && !cert.StatusSetAt.IsZero() {
		statusOn = documents.FormatDate(cert.StatusSetAt)
	}

	verificationURL := ""
	if event == EventIssued || event == EventReissued {
		url, err := d.verificationURL(consultant, cert)
		if err != nil {
			if !errors.Is(err, certificates.ErrTokenBuild) {
				log.Error().Err(err).
					Uint("consultant_id", consultant.ID).
					Msg("Failed to build verification URL for notification")
			}
		} else {
			verificationURL = url
		}
	}

	reference := ""
	if cert != nil {
		reference = fmt.Sprintf("#%d", cert.ID)
	}
	reasonBlock := ""
	if reason != "" {
		reasonBlock = fmt.Sprintf("Reason: %s\n\n", reason)
	}

	return map[string]string{
		"consultant_name":       consultant.FullName,
		"consultant_email":      consultant.Email,
		"certificate_reference": reference,
		"issued_on":             issuedOn,
		"status_on":             statusOn,
		"verification_url":      verificationURL,
		"reason":                reason,
		"reason_block":          reasonBlock,
		"short_reason":          reason,
		"event":                 event,
	}
}

func (d *Dispatcher) verificationURL(consultant *models.Consultant, cert *models.Certificate) (string, error) {
	if d.Codec == nil {
		return "", certificates.ErrTokenBuild
	}
	if cert != nil && cert.IsActive() {
		return certificates.BuildVerificationURL(d.VerifyBaseURL, d.Codec, consultant, cert)
	}
	token, err := d.Codec.BuildForConsultant(d.DB, consultant)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/verify/%s?token=%s", strings.TrimRight(d.VerifyBaseURL, "/"), consultant.UUID, token), nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, consultant *models.Consultant, tmpl Template, renderCtx map[string]string) (string, error) {
	if consultant.Email == "" {
		log.Warn().
			Uint("consultant_id", consultant.ID).
			Msg("Consultant has no email address; skipping certificate notification email")
		return StatusSkipped, nil
	}
	if d.Email == nil || tmpl.EmailSubject == "" || tmpl.EmailBody == "" {
		return StatusDisabled, nil
	}

	subject := strings.TrimSpace(interpolate(tmpl.EmailSubject, renderCtx))
	body := strings.TrimSpace(interpolate(tmpl.EmailBody, renderCtx))
	if subject == "" || body == "" {
		return StatusDisabled, nil
	}

	if err := d.Email.Send(ctx, consultant.Email, subject, body); err != nil {
		return StatusFailed, err
	}
	return StatusSent, nil
}

func (d *Dispatcher) sendSMS(ctx context.Context, consultant *models.Consultant, tmpl Template, renderCtx map[string]string, override *bool) (string, error) {
	if !d.shouldSendSMS(override) || tmpl.SMSBody == "" {
		return StatusDisabled, nil
	}
	if !validation.IsValidPhone(consultant.PhoneNumber) {
		return StatusSkipped, nil
	}

	message := strings.TrimSpace(interpolate(tmpl.SMSBody, renderCtx))
	if message == "" {
		return StatusDisabled, nil
	}

	sender := d.smsSender()
	if sender == nil {
		return StatusDisabled, nil
	}
	if err := sender.Send(ctx, consultant.PhoneNumber, message); err != nil {
		return StatusFailed, err
	}
	return StatusSent, nil
}

func (d *Dispatcher) shouldSendSMS(override *bool) bool {
	if override != nil {
		return *override
	}
	return d.SMSEnabled
}

// smsSender returns the first configured transport: Twilio primary, gateway
// fallback, in the order the dispatcher was wired.
func (d *Dispatcher) smsSender() SMSSender {
	for _, sender := range d.SMS {
		if sender != nil && sender.Configured() {
			return sender
		}
	}
	return nil
}
