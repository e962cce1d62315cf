package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lawbot-ai/go-lawbot/pkg/conversation"
	"github.com/lawbot-ai/go-lawbot/pkg/playback"
)

// handleState returns the full conversation snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Snapshot())
}

// handleMessages returns the message list in creation order.
func (s *Server) handleMessages(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Messages())
}

// handleGetSettings returns the current settings.
func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Settings())
}

// SettingsPatch carries a partial settings update. Absent fields are left
// unchanged.
type SettingsPatch struct {
	RecognitionLang *string `json:"recognitionLang"`
	SpeakLang       *string `json:"speakLang"`
	AutoTranslate   *bool   `json:"autoTranslateBeforeSend"`
	VoiceURI        *string `json:"selectedVoice"`
	MicDisabled     *bool   `json:"micDisabled"`
}

// handlePatchSettings applies a partial settings update.
func (s *Server) handlePatchSettings(c *fiber.Ctx) error {
	var patch SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "invalid settings body")
	}

	if patch.RecognitionLang != nil {
		s.ctrl.SetRecognitionLang(*patch.RecognitionLang)
	}
	if patch.SpeakLang != nil {
		s.ctrl.SetSpeakLang(*patch.SpeakLang)
	}
	if patch.AutoTranslate != nil {
		s.ctrl.SetAutoTranslate(*patch.AutoTranslate)
	}
	if patch.VoiceURI != nil {
		s.ctrl.SetVoice(*patch.VoiceURI)
	}
	if patch.MicDisabled != nil {
		s.ctrl.SetMicDisabled(*patch.MicDisabled)
	}

	return c.JSON(s.ctrl.Settings())
}

// handleVoices returns the synthesis voice catalog.
func (s *Server) handleVoices(c *fiber.Ctx) error {
	voices := s.ctrl.Voices()
	if voices == nil {
		voices = []playback.Voice{}
	}
	return c.JSON(voices)
}

// SendRequest is the body for POST /api/send. Empty text sends the current
// draft.
type SendRequest struct {
	Text string `json:"text"`
}

// handleSend runs one turn. Returns 409 while a send is in flight.
func (s *Server) handleSend(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid send body")
	}

	text := req.Text
	if text == "" {
		text = s.ctrl.Draft()
	}

	if err := s.ctrl.Send(text); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"accepted": true})
}

// DraftRequest is the body for POST /api/draft.
type DraftRequest struct {
	Text string `json:"text"`
}

// handleDraft replaces the composer text.
func (s *Server) handleDraft(c *fiber.Ctx) error {
	var req DraftRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid draft body")
	}
	s.ctrl.SetDraft(req.Text)
	return c.JSON(fiber.Map{"draft": req.Text})
}

// handlePayload previews the outbound request payload for text under the
// current settings, including the translation the send pipeline would
// perform.
func (s *Server) handlePayload(c *fiber.Ctx) error {
	var req SendRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload body")
	}

	text := req.Text
	if text == "" {
		text = s.ctrl.Draft()
	}
	if text == "" {
		return badRequest(c, "nothing to build a payload from")
	}

	return c.JSON(s.ctrl.BuildPayload(c.Context(), text))
}

// handleMicToggle starts or stops speech capture.
func (s *Server) handleMicToggle(c *fiber.Ctx) error {
	if err := s.ctrl.ToggleMic(); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"listening": s.ctrl.Snapshot().State == conversation.StateCapturing})
}

// handleMicInsert appends the finalized transcript to the draft, or starts
// capture when there is nothing to insert yet.
func (s *Server) handleMicInsert(c *fiber.Ctx) error {
	if err := s.ctrl.InsertTranscript(); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"draft": s.ctrl.Draft()})
}

// handleAudioToggle flips the shared audio flag.
func (s *Server) handleAudioToggle(c *fiber.Ctx) error {
	disabled := !s.ctrl.Settings().MicDisabled
	s.ctrl.SetMicDisabled(disabled)
	return c.JSON(fiber.Map{"micDisabled": disabled})
}

// handlePlayMessage speaks one message on demand.
func (s *Server) handlePlayMessage(c *fiber.Ctx) error {
	if err := s.ctrl.PlayMessage(c.Params("id")); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"playing": true})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// sendError maps controller errors to HTTP statuses.
func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, conversation.ErrBusy):
		status = fiber.StatusConflict
	case errors.Is(err, conversation.ErrEmpty):
		status = fiber.StatusBadRequest
	case errors.Is(err, conversation.ErrMicDisabled):
		status = fiber.StatusConflict
	case errors.Is(err, conversation.ErrNotFound):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
