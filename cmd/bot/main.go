package main

import (
	"log"

	"github.com/doomercreatine/MasterCasketBot/internal/twitch"
)

func main() {
	bot, err := twitch.NewBot()
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("bot stopped: %v", err)
	}
}
