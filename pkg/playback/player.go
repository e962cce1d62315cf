package playback

import (
	"log/slog"
	"sync"

	"github.com/lawbot-ai/go-lawbot/pkg/lang"
)

// Player is the speech output used by the conversation controller. It owns
// mute state and voice selection; the underlying synthesizer only ever sees
// one utterance at a time.
type Player struct {
	synth  Synthesizer
	logger *slog.Logger

	mu    sync.Mutex
	muted bool
}

// NewPlayer wraps a synthesizer. A nil synthesizer means no
// speech-synthesis capability; Supported reports false and Speak becomes a
// logged no-op.
func NewPlayer(synth Synthesizer, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		synth:  synth,
		logger: logger.With("component", "playback"),
	}
}

// Supported reports whether speech synthesis is available.
func (p *Player) Supported() bool {
	return p.synth != nil
}

// Speak cancels any current utterance and speaks text in langTag.
// voiceHint names a preferred voice URI; it is used only when the catalog
// knows it and its language matches, otherwise the first voice whose
// language prefix matches is chosen, otherwise the platform default.
// Empty text is a no-op. While muted, Speak cancels in-flight audio and
// plays nothing, without error.
func (p *Player) Speak(text, langTag, voiceHint string) {
	if p.synth == nil || text == "" {
		return
	}

	p.mu.Lock()
	muted := p.muted
	p.mu.Unlock()

	if muted {
		p.synth.Stop()
		return
	}

	p.synth.Stop()
	voice := p.selectVoice(langTag, voiceHint)
	if err := p.synth.Speak(text, langTag, voice); err != nil {
		// A reply that cannot be spoken is still shown as text.
		p.logger.Warn("speech synthesis failed", "lang", langTag, "error", err)
	}
}

// Stop cancels playback immediately. Idempotent.
func (p *Player) Stop() {
	if p.synth == nil {
		return
	}
	p.synth.Stop()
}

// SetMuted toggles the mute flag. Muting cancels any in-flight utterance
// synchronously.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()

	if muted && p.synth != nil {
		p.synth.Stop()
	}
}

// Muted reports the mute flag.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Voices returns the current voice catalog. Callers must tolerate an empty
// catalog early on and re-query after a voices-changed notification.
func (p *Player) Voices() []Voice {
	if p.synth == nil {
		return nil
	}
	return p.synth.Voices()
}

// OnVoicesChanged registers a catalog update callback.
func (p *Player) OnVoicesChanged(fn func()) {
	if p.synth == nil {
		return
	}
	p.synth.OnVoicesChanged(fn)
}

// selectVoice resolves the voice URI to pass to the synthesizer.
func (p *Player) selectVoice(langTag, voiceHint string) string {
	voices := p.synth.Voices()

	if voiceHint != "" {
		for _, v := range voices {
			if v.URI == voiceHint && lang.Matches(v.Lang, langTag) {
				return v.URI
			}
		}
	}

	for _, v := range voices {
		if lang.Matches(v.Lang, langTag) {
			return v.URI
		}
	}

	// Unknown language or empty catalog: let the platform pick.
	return ""
}
