// Package telegram drives one planning session per chat over a webhook bot.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"comidacasa/internal/config"
	"comidacasa/internal/menu"
	"comidacasa/internal/planner"
	"comidacasa/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RecipeImporter extracts a recipe hint from a web page.
type RecipeImporter interface {
	ImportRecipe(ctx context.Context, url string) (menu.Recipe, error)
}

// Bot wraps the Telegram API around per-chat planning sessions.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	ops      session.Operations
	importer RecipeImporter

	mu       sync.Mutex
	sessions map[int64]*session.Session
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, ops session.Operations, importer RecipeImporter) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:      bot,
		cfg:      cfg,
		ops:      ops,
		importer: importer,
		sessions: make(map[int64]*session.Session),
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) sessionFor(chatID int64) *session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = session.New(b.ops, session.DefaultProfiles())
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/plan":
		b.handlePlanRequest(msg)
	case strings.HasPrefix(text, "/detalle"):
		b.handleDetailsRequest(msg)
	case text == "/compra":
		b.handleShoppingRequest(msg)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleImportRequest(msg)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

const helpText = `🍽 *ComidaCasa*

/plan — generar el menú semanal
/detalle <día> <comida|cena> — receta completa de un plato
/compra — lista de la compra del plan
Envía la URL de una receta para importarla como sugerencia.`

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	sentMsg, err := b.replyMessage(msg.Chat.ID, "🧑‍🍳 *Generando tu menú semanal...*")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	s := b.sessionFor(msg.Chat.ID)
	err = s.GeneratePlan(context.Background(), planner.PlanInput{
		Duration:  7,
		StartDate: time.Now(),
	})

	var finalText string
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		finalText = fmt.Sprintf("❌ %s", err.Error())
	} else {
		finalText = formatPlanMarkdown(s.Plan())
	}
	b.edit(msg.Chat.ID, sentMsg.MessageID, finalText)
}

func (b *Bot) handleDetailsRequest(msg *tgbotapi.Message) {
	coord, err := parseDetailsCommand(msg.Text)
	if err != nil {
		b.reply(msg.Chat.ID, "Uso: /detalle <día> <comida|cena>, por ejemplo `/detalle 3 cena`.")
		return
	}

	s := b.sessionFor(msg.Chat.ID)
	if err := s.FetchMealDetails(context.Background(), coord); err != nil {
		log.Printf("Error fetching details: %v", err)
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	meal := s.Plan().MealAt(coord)
	b.reply(msg.Chat.ID, formatMealMarkdown(meal))
}

func (b *Bot) handleShoppingRequest(msg *tgbotapi.Message) {
	sentMsg, err := b.replyMessage(msg.Chat.ID, "🛒 *Preparando tu lista de la compra...*")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	s := b.sessionFor(msg.Chat.ID)
	list, err := s.ShoppingList(context.Background())

	var finalText string
	if err != nil {
		log.Printf("Error generating shopping list: %v", err)
		finalText = fmt.Sprintf("❌ %s", err.Error())
	} else {
		finalText = formatShoppingListMarkdown(list)
	}
	b.edit(msg.Chat.ID, sentMsg.MessageID, finalText)
}

func (b *Bot) handleImportRequest(msg *tgbotapi.Message) {
	sentMsg, err := b.replyMessage(msg.Chat.ID, "✂️ *Importando receta...*")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	recipe, err := b.importer.ImportRecipe(context.Background(), msg.Text)

	var finalText string
	if err != nil {
		log.Printf("Error importing recipe: %v", err)
		finalText = fmt.Sprintf("❌ %s", err.Error())
	} else {
		b.sessionFor(msg.Chat.ID).AddRecipe(recipe)
		finalText = fmt.Sprintf("✅ *Receta guardada:* %s\nSe tendrá en cuenta en el próximo /plan.", recipe.Name)
	}
	b.edit(msg.Chat.ID, sentMsg.MessageID, finalText)
}

// parseDetailsCommand parses "/detalle <día> <comida|cena>" into a plan
// coordinate. Days are 1-based for the user.
func parseDetailsCommand(text string) (menu.Coordinate, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return menu.Coordinate{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	day, err := strconv.Atoi(fields[1])
	if err != nil || day < 1 {
		return menu.Coordinate{}, fmt.Errorf("invalid day %q", fields[1])
	}

	slot := menu.Slot(strings.ToLower(fields[2]))
	if slot != menu.SlotLunch && slot != menu.SlotDinner {
		return menu.Coordinate{}, fmt.Errorf("invalid slot %q", fields[2])
	}

	return menu.Coordinate{DayIndex: day - 1, Slot: slot}, nil
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.replyMessage(chatID, text); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

func (b *Bot) replyMessage(chatID int64, text string) (tgbotapi.Message, error) {
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = "Markdown"
	return b.api.Send(reply)
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}
