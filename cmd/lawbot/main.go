// lawbot is a voice-enabled chat client: it captures speech, translates
// drafts before sending, talks to the reply service and speaks replies,
// exposing the whole conversation over an HTTP and websocket API.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawbot-ai/go-lawbot/internal/config"
	"github.com/lawbot-ai/go-lawbot/internal/log"
	"github.com/lawbot-ai/go-lawbot/pkg/chat"
	"github.com/lawbot-ai/go-lawbot/pkg/conversation"
	"github.com/lawbot-ai/go-lawbot/pkg/playback"
	"github.com/lawbot-ai/go-lawbot/pkg/speech"
	"github.com/lawbot-ai/go-lawbot/pkg/translate"
	"github.com/lawbot-ai/go-lawbot/pkg/web"
)

func main() {
	config.LoadEnv()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	port := flag.String("port", config.Port(), "HTTP listen port")
	apiBase := flag.String("api", config.APIBaseURL(), "Base URL of the translate/chat service")
	mockSTT := flag.Bool("mock-stt", false, "Use the scriptable mock recognizer instead of the streaming service")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	// Speech-to-text is optional: without a recognizer endpoint the client
	// still runs, typed input only.
	var engine speech.Engine
	switch {
	case *mockSTT:
		engine = speech.NewMockEngine(log.L())
	case config.STTWebSocketURL() != "":
		engine = speech.NewCloudEngine(speech.CloudConfig{
			URL:    config.STTWebSocketURL(),
			APIKey: os.Getenv("STT_API_KEY"),
		}, log.L())
	default:
		log.Info("no recognizer configured, speech capture disabled")
	}

	capture := speech.NewCapture(engine, log.L())

	// No local synthesizer ships with the server build; playback is wired
	// through the websocket clients, which receive reply text and language
	// in each snapshot.
	player := playback.NewPlayer(nil, log.L())

	translator := translate.NewClient(*apiBase, config.TranslateTimeout(), log.L())
	chatClient := chat.NewClient(*apiBase, config.ChatTimeout(), log.L())

	ctrl := conversation.New(capture, player, translator, chatClient, log.L())
	defer ctrl.Close()

	server := web.NewServer(*port, ctrl, log.L())

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("lawbot running", "port", *port, "api", *apiBase,
		"capture", capture.Supported())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
