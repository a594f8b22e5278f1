package main // Entry point package for the Telegram front end

import (
	"log"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/officefit/office-yoga/internal/bot"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_TOKEN, API_URL, API_KEY

	token := os.Getenv("TELEGRAM_TOKEN")
	apiURL := os.Getenv("API_URL")
	apiKey := os.Getenv("API_KEY")
	if token == "" || apiURL == "" || apiKey == "" {
		log.Fatal("TELEGRAM_TOKEN, API_URL and API_KEY must be set")
	}

	tg, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	log.Printf("authorized as @%s", tg.Self.UserName)

	h := &bot.Handler{Bot: tg, API: bot.NewClient(apiURL, apiKey)}
	h.Listen()
}
