// Package conversation implements the chat client's orchestrator. The
// Controller owns the message list and the per-turn state machine: it takes
// a draft (typed or captured), optionally translates it, dispatches it to
// the reply service and speaks whatever comes back, substituting a local
// fallback reply when the backend is unreachable.
//
// The leaf components (speech capture, playback, translate, chat) never see
// each other; the controller is the only coordinator.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lawbot-ai/go-lawbot/pkg/chat"
	"github.com/lawbot-ai/go-lawbot/pkg/lang"
	"github.com/lawbot-ai/go-lawbot/pkg/playback"
	"github.com/lawbot-ai/go-lawbot/pkg/speech"
	"github.com/lawbot-ai/go-lawbot/pkg/translate"
)

// Errors returned by controller operations.
var (
	ErrBusy        = errors.New("conversation: a send is already in flight")
	ErrEmpty       = errors.New("conversation: empty message")
	ErrMicDisabled = errors.New("conversation: microphone is disabled")
	ErrNotFound    = errors.New("conversation: no such message")
)

// Fixed strings from the turn pipeline. The warning prefix marks a locally
// synthesized fallback reply in the transcript.
const (
	greetingText   = "Hello — choose a language and speak or type below."
	pendingText    = "Thinking..."
	fallbackPrefix = "⚠️ Backend error — using local fallback.\n\n"
	clientTag      = "go-lawbot"

	// targetLang is the fixed translation target in the default policy.
	targetLang = "en"
)

// TurnState describes where the current turn is.
type TurnState string

const (
	StateIdle      TurnState = "idle"
	StateCapturing TurnState = "capturing"
	StateComposing TurnState = "composing"
	StateSending   TurnState = "sending"
)

// Snapshot is a read-only view of the conversation for the presentation
// layer.
type Snapshot struct {
	Messages   []Message         `json:"messages"`
	Draft      string            `json:"draft"`
	Transcript speech.Transcript `json:"transcript"`
	State      TurnState         `json:"state"`
	Settings   Settings          `json:"settings"`

	// CaptureSupported and PlaybackSupported surface the capability
	// flags decided at initialization.
	CaptureSupported  bool `json:"captureSupported"`
	PlaybackSupported bool `json:"playbackSupported"`
}

// Controller orchestrates one conversation.
type Controller struct {
	capture    *speech.Capture
	player     *playback.Player
	translator *translate.Client
	chat       *chat.Client
	logger     *slog.Logger

	store *messageStore

	mu       sync.Mutex
	settings Settings
	draft    string
	sending  bool

	// draftCutoff is the transcript-reset watermark of the latest send.
	// Capture finals stamped at or below it were spoken before the send
	// and must not reappear in the cleared composer.
	draftCutoff uint64

	onChange func()
	done     chan struct{}
}

// New creates a controller and starts its capture event pump. The
// conversation opens with the greeting message.
func New(capture *speech.Capture, player *playback.Player, translator *translate.Client, chatClient *chat.Client, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		capture:    capture,
		player:     player,
		translator: translator,
		chat:       chatClient,
		logger:     logger.With("component", "conversation"),
		store:      newMessageStore(),
		settings:   DefaultSettings(),
		done:       make(chan struct{}),
	}

	c.store.append(RoleBot, greetingText, false, Meta{ReplyLang: lang.EnglishUS})

	go c.pumpCapture()
	return c
}

// Close stops the event pump and any active capture or playback.
func (c *Controller) Close() {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	c.capture.Stop()
	c.player.Stop()
}

// OnChange registers a callback fired after every observable state change.
// The presentation layer calls Snapshot from it.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Snapshot returns the current conversation view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	draft := c.draft
	settings := c.settings
	sending := c.sending
	c.mu.Unlock()

	state := StateIdle
	switch {
	case sending:
		state = StateSending
	case c.capture.Listening():
		state = StateCapturing
	case draft != "":
		state = StateComposing
	}

	return Snapshot{
		Messages:          c.store.snapshot(),
		Draft:             draft,
		Transcript:        c.capture.Transcript(),
		State:             state,
		Settings:          settings,
		CaptureSupported:  c.capture.Supported(),
		PlaybackSupported: c.player.Supported(),
	}
}

// Messages returns the conversation in creation order.
func (c *Controller) Messages() []Message {
	return c.store.snapshot()
}

// Settings returns a copy of the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetRecognitionLang changes the capture decode language.
func (c *Controller) SetRecognitionLang(tag string) {
	c.mu.Lock()
	c.settings.RecognitionLang = tag
	c.mu.Unlock()
	c.notify()
}

// SetSpeakLang changes the synthesis language preference.
func (c *Controller) SetSpeakLang(tag string) {
	c.mu.Lock()
	c.settings.SpeakLang = tag
	c.mu.Unlock()
	c.notify()
}

// SetAutoTranslate toggles translate-before-send.
func (c *Controller) SetAutoTranslate(on bool) {
	c.mu.Lock()
	c.settings.AutoTranslate = on
	c.mu.Unlock()
	c.notify()
}

// SetVoice selects a preferred synthesis voice by URI.
func (c *Controller) SetVoice(uri string) {
	c.mu.Lock()
	c.settings.VoiceURI = uri
	c.mu.Unlock()
	c.notify()
}

// SetMicDisabled toggles the shared audio flag. Disabling cancels any
// in-flight playback synchronously and blocks capture starts until
// re-enabled.
func (c *Controller) SetMicDisabled(disabled bool) {
	c.mu.Lock()
	c.settings.MicDisabled = disabled
	c.mu.Unlock()

	c.player.SetMuted(disabled)
	c.notify()
}

// Voices returns the synthesis voice catalog.
func (c *Controller) Voices() []playback.Voice {
	return c.player.Voices()
}

// Draft returns the composer text.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the composer text (free typing).
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
	c.notify()
}

// AppendDraft adds text to the composer, space-separated from whatever is
// already there.
func (c *Controller) AppendDraft(text string) {
	if text == "" {
		return
	}
	c.appendDraft(text)
}

// InsertTranscript appends the finalized transcript to the draft, or
// starts capture when there is nothing to insert yet.
func (c *Controller) InsertTranscript() error {
	final := c.capture.Transcript().Final
	if final == "" {
		return c.ToggleMic()
	}
	c.appendDraft(final)
	return nil
}

// ToggleMic starts capture when idle and stops it when listening.
// Rejected while the microphone is disabled.
func (c *Controller) ToggleMic() error {
	c.mu.Lock()
	disabled := c.settings.MicDisabled
	recLang := c.settings.RecognitionLang
	c.mu.Unlock()

	if disabled {
		return ErrMicDisabled
	}

	if c.capture.Listening() {
		c.capture.Stop()
		return nil
	}
	return c.capture.Start(recLang)
}

// PlayMessage speaks one message on demand, using its recorded language
// or the script heuristic when it has none.
func (c *Controller) PlayMessage(id string) error {
	msg, ok := c.store.get(id)
	if !ok {
		return ErrNotFound
	}

	c.mu.Lock()
	voice := c.settings.VoiceURI
	c.mu.Unlock()

	tag := msg.Meta.ReplyLang
	if tag == "" {
		tag = lang.Infer(msg.Text)
	}
	c.player.Speak(msg.Text, tag, voice)
	return nil
}

// BuildPayload constructs the request payload for text under the current
// settings, invoking translation when policy asks for it. Exposed for the
// composer's copy/download payload affordance; Send uses it internally.
func (c *Controller) BuildPayload(ctx context.Context, text string) chat.Payload {
	c.mu.Lock()
	settings := c.settings
	c.mu.Unlock()

	p := chat.Payload{
		OriginalText: text,
		SourceLang:   lang.Base(settings.RecognitionLang),
		TargetLang:   targetLang,
		SpeakLang:    settings.SpeakLang,
		Metadata: chat.Metadata{
			TS:     time.Now().UTC().Format(time.RFC3339),
			Client: clientTag,
		},
	}

	// Translation is requested only when the recognition language is not
	// already the target. Failure is not fatal: the payload simply goes
	// out without a translation.
	if settings.AutoTranslate && settings.RecognitionLang != lang.EnglishUS {
		if res, ok := c.translator.Translate(ctx, text, p.SourceLang, targetLang); ok {
			p.TranslatedText = &res.TranslatedText
			if res.DetectedSourceLang != "" {
				p.SourceLang = res.DetectedSourceLang
			}
		}
	}

	return p
}

// Send runs one turn: append the user message and a pending placeholder,
// build the payload, call the reply service and resolve the placeholder
// with either the reply or the local fallback. Only one send may be in
// flight; a second attempt returns ErrBusy until the first resolves.
func (c *Controller) Send(text string) error {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ErrEmpty
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.sending = true
	// The watermark must move before the draft clears, in the same
	// critical section, so a queued final from before this send can never
	// land in the emptied composer.
	c.draftCutoff = c.capture.ResetTranscript()
	c.draft = ""
	c.mu.Unlock()

	c.store.append(RoleUser, raw, false, Meta{ReplyLang: lang.Infer(raw)})
	pendingID := c.store.append(RoleBot, pendingText, true, Meta{})
	c.notify()

	go c.runTurn(raw, pendingID)
	return nil
}

// runTurn executes the network half of a turn and resolves the
// placeholder. It always clears the busy flag, success or failure.
func (c *Controller) runTurn(raw, pendingID string) {
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
		c.notify()
	}()

	ctx := context.Background()
	payload := c.BuildPayload(ctx, raw)

	reply, err := c.chat.Send(ctx, payload)
	if err != nil {
		c.logger.Error("chat call failed, using local fallback", "error", err)
		c.resolveFallback(pendingID, raw)
		return
	}

	replyText := reply.Reply
	if reply.TranslatedReply != nil && *reply.TranslatedReply != "" {
		replyText = *reply.TranslatedReply
	}
	if replyText == "" {
		replyText = "No reply returned"
	}

	replyLang := reply.ReplyLang
	if replyLang == "" {
		replyLang = lang.Infer(replyText)
	}

	if !c.store.resolve(pendingID, replyText, Meta{ReplyLang: replyLang}) {
		// The placeholder is gone (conversation torn down while the
		// call was in flight). Discard the stale response.
		c.logger.Warn("discarding stale reply", "pending_id", pendingID)
		return
	}

	c.speak(replyText, replyLang)
}

// resolveFallback substitutes a locally synthesized echo reply so the
// conversation keeps working without the backend. The spoken text omits
// the warning banner; only the displayed message carries it.
func (c *Controller) resolveFallback(pendingID, raw string) {
	echo := "You said: " + raw
	if lang.Infer(raw) == lang.HindiIN {
		echo = "आपने कहा: " + raw
	}
	replyLang := lang.Infer(raw)

	if !c.store.resolve(pendingID, fallbackPrefix+echo, Meta{ReplyLang: replyLang}) {
		c.logger.Warn("discarding stale fallback", "pending_id", pendingID)
		return
	}

	c.speak(echo, replyLang)
}

func (c *Controller) speak(text, tag string) {
	c.mu.Lock()
	voice := c.settings.VoiceURI
	c.mu.Unlock()
	c.player.Speak(text, tag, voice)
}

// pumpCapture consumes capture events: interim text drives the live
// preview, final text appends to the draft, errors just end the session.
func (c *Controller) pumpCapture() {
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.capture.Events():
			if !ok {
				return
			}
			switch ev.Kind {
			case speech.EventFinal:
				c.mu.Lock()
				stale := ev.Seq <= c.draftCutoff
				c.mu.Unlock()
				if stale {
					// Spoken before the send that cleared the draft.
					c.logger.Debug("discarding final segment from before send", "text", ev.Text)
					c.notify()
					continue
				}
				c.appendDraft(ev.Text)
			case speech.EventError:
				// The session is over; no auto-restart. The UI
				// returns to idle silently.
				c.logger.Warn("speech recognition error", "error", ev.Err)
				c.notify()
			default:
				c.notify()
			}
		}
	}
}

func (c *Controller) appendDraft(text string) {
	c.mu.Lock()
	if c.draft != "" {
		c.draft += " " + text
	} else {
		c.draft = text
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
