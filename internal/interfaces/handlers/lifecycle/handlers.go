package lifecycle

import (
	"strings"

	"certlife-backend/internal/jobs"
	"certlife-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers accepts staff lifecycle actions and enqueues the background jobs.
type Handlers struct {
	Queue jobs.Queue
}

type actionRequest struct {
	Reason           string                 `json:"reason"`
	ActorID          *uint                  `json:"actor_id"`
	ActorName        string                 `json:"actor_name"`
	NotifyConsultant *bool                  `json:"notify_consultant"`
	Metadata         map[string]interface{} `json:"metadata"`
}

func (r *actionRequest) payload(consultant string) jobs.LifecyclePayload {
	notify := true
	if r.NotifyConsultant != nil {
		notify = *r.NotifyConsultant
	}
	return jobs.LifecyclePayload{
		Consultant:       consultant,
		Reason:           strings.TrimSpace(r.Reason),
		ActorID:          r.ActorID,
		ActorName:        r.ActorName,
		NotifyConsultant: notify,
		Metadata:         r.Metadata,
	}
}

// Revoke handles POST /certificates/:consultant/revoke.
func (h *Handlers) Revoke(c *fiber.Ctx) error {
	return h.enqueue(c, jobs.JobRevoke)
}

// Reissue handles POST /certificates/:consultant/reissue.
func (h *Handlers) Reissue(c *fiber.Ctx) error {
	return h.enqueue(c, jobs.JobReissue)
}

func (h *Handlers) enqueue(c *fiber.Ctx, name string) error {
	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	payload := req.payload(c.Params("consultant"))
	if payload.Reason == "" {
		return response.Error(c, "A reason is required", fiber.StatusBadRequest, nil)
	}

	var err error
	switch name {
	case jobs.JobRevoke:
		err = jobs.EnqueueRevoke(c.Context(), h.Queue, payload)
	case jobs.JobReissue:
		err = jobs.EnqueueReissue(c.Context(), h.Queue, payload)
	}
	if err != nil {
		return err
	}

	return response.Accepted(c, "Certificate task enqueued", fiber.Map{
		"job":        name,
		"consultant": payload.Consultant,
	})
}
