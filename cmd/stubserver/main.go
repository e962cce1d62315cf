// stubserver is the collaborator service the chat client talks to. It
// serves the translate and reply endpoints with deterministic local rules,
// and upgrades each to a real backend when credentials are present:
// Google Cloud Translation for /api/translate and OpenAI for /api/chat.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"

	"github.com/lawbot-ai/go-lawbot/internal/config"
	"github.com/lawbot-ai/go-lawbot/internal/log"
	"github.com/lawbot-ai/go-lawbot/pkg/chat"
	"github.com/lawbot-ai/go-lawbot/pkg/lang"
)

const replyModel = openai.GPT4oMini

type server struct {
	translateSvc *gtranslate.Service
	openaiClient *openai.Client
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"sourceLang"`
	Target string `json:"targetLang"`
}

type translateResponse struct {
	TranslatedText     string `json:"translatedText"`
	DetectedSourceLang string `json:"detectedSourceLang,omitempty"`
}

func main() {
	config.LoadEnv()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	port := flag.String("port", config.Env("STUB_PORT", "8000"), "HTTP listen port")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	s := &server{}

	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		svc, err := gtranslate.NewService(context.Background(), option.WithAPIKey(key))
		if err != nil {
			log.Error("google translate init failed, using mock rules", "error", err)
		} else {
			s.translateSvc = svc
			log.Info("translate backend: google cloud translation")
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		s.openaiClient = openai.NewClient(key)
		log.Info("reply backend: openai", "model", replyModel)
	}

	app := newApp(s)

	log.Info("stubserver listening", "port", *port,
		"real_translate", s.translateSvc != nil,
		"real_reply", s.openaiClient != nil)

	if err := app.Listen(":" + *port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newApp(s *server) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lawbot-stubserver",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Post("/translate", s.handleTranslate)
	api.Post("/chat", s.handleChat)

	return app
}

func (s *server) handleTranslate(c *fiber.Ctx) error {
	var req translateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid translate body"})
	}

	if s.translateSvc != nil {
		if resp, err := s.realTranslate(c.Context(), req); err == nil {
			return c.JSON(resp)
		} else {
			log.Warn("google translate failed, using mock rules", "error", err)
		}
	}

	return c.JSON(mockTranslate(req))
}

// mockTranslate applies the deterministic rule: Devanagari text headed for
// an English target gets a marked pseudo-translation, everything else
// passes through unchanged.
func mockTranslate(req translateRequest) translateResponse {
	if lang.Infer(req.Text) == lang.HindiIN && strings.HasPrefix(req.Target, "en") {
		return translateResponse{
			TranslatedText:     "[mock-EN] " + req.Text,
			DetectedSourceLang: "hi",
		}
	}
	return translateResponse{
		TranslatedText:     req.Text,
		DetectedSourceLang: req.Source,
	}
}

func (s *server) realTranslate(ctx context.Context, req translateRequest) (translateResponse, error) {
	call := s.translateSvc.Translations.List([]string{req.Text}, req.Target).
		Format("text").
		Context(ctx)
	if req.Source != "" && req.Source != lang.Undetermined {
		call = call.Source(req.Source)
	}

	resp, err := call.Do()
	if err != nil {
		return translateResponse{}, err
	}
	if len(resp.Translations) == 0 {
		return translateResponse{}, errNoTranslation
	}

	tr := resp.Translations[0]
	detected := tr.DetectedSourceLanguage
	if detected == "" {
		detected = req.Source
	}
	return translateResponse{
		TranslatedText:     tr.TranslatedText,
		DetectedSourceLang: detected,
	}, nil
}

var errNoTranslation = fiber.NewError(fiber.StatusBadGateway, "translation service returned no results")

func (s *server) handleChat(c *fiber.Ctx) error {
	var p chat.Payload
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat body"})
	}

	// The agent works on the translated text when the client provided one.
	textForAgent := p.OriginalText
	if p.TranslatedText != nil && *p.TranslatedText != "" {
		textForAgent = *p.TranslatedText
	}

	if s.openaiClient != nil {
		if reply, err := s.realReply(c.Context(), textForAgent); err == nil {
			return c.JSON(reply)
		} else {
			log.Warn("openai reply failed, using stub reply", "error", err)
		}
	}

	return c.JSON(chat.Reply{
		Reply:     "Agent reply (server stub): processed -> " + textForAgent,
		ReplyLang: lang.Infer(textForAgent),
	})
}

func (s *server) realReply(ctx context.Context, text string) (chat.Reply, error) {
	resp, err := s.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: replyModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a concise legal assistant. Answer in the language of the question.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return chat.Reply{}, err
	}
	if len(resp.Choices) == 0 {
		return chat.Reply{}, errNoChoices
	}

	replyText := resp.Choices[0].Message.Content
	return chat.Reply{
		Reply:     replyText,
		ReplyLang: lang.Infer(replyText),
	}, nil
}

var errNoChoices = fiber.NewError(fiber.StatusBadGateway, "model returned no choices")
