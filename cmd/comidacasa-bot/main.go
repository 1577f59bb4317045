package main

import (
	"context"
	"log"
	"net/http"

	"comidacasa/internal/clipper"
	"comidacasa/internal/config"
	"comidacasa/internal/llm"
	"comidacasa/internal/planner"
	"comidacasa/internal/telegram"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL must be set for the bot")
	}

	gen, closeGen, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer closeGen()

	invoker := llm.NewInvoker(gen, llm.DefaultPolicy())
	core := planner.New(invoker)
	clip := clipper.New(invoker)

	bot, err := telegram.NewBot(cfg, core, clip)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	bot.RegisterHandlers()

	log.Printf("Bot listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}
