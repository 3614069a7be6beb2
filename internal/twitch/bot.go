package twitch

import (
	"context"
	"strings"

	irc "github.com/gempir/go-twitch-irc/v4"
	"github.com/sirupsen/logrus"

	"github.com/doomercreatine/MasterCasketBot/internal/archive"
	"github.com/doomercreatine/MasterCasketBot/internal/config"
	"github.com/doomercreatine/MasterCasketBot/internal/emotes"
	"github.com/doomercreatine/MasterCasketBot/internal/game"
	"github.com/doomercreatine/MasterCasketBot/internal/logging"
	"github.com/doomercreatine/MasterCasketBot/internal/storage"
)

type Bot struct {
	client  *irc.Client
	handler *Handler
	cfg     *config.Config
	log     *logrus.Logger
}

func NewBot() (*Bot, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogFile)

	store, err := storage.New(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := store.Ping(); err != nil {
		log.Fatalf("cannot ping DB: %v", err)
	} else {
		log.Info("✅ Connected to Postgres")
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var provider emotes.Provider
	if cfg.BTTVURL != "" && cfg.FFZURL != "" {
		provider = &emotes.APIProvider{BTTVURL: cfg.BTTVURL, FFZURL: cfg.FFZURL}
	} else {
		provider = &emotes.FileProvider{BTTVPath: cfg.BTTVFile, FFZPath: cfg.FFZFile}
	}
	emoteList, err := provider.Emotes(ctx)
	if err != nil {
		// без эмоутов жить можно, нормализатор просто будет строже
		log.Warnf("could not load emote list: %v", err)
	}

	archiver := &archive.DirArchiver{Dir: cfg.ArchiveDir}
	svc := game.New(store, archiver, game.NewNormalizer(emoteList), log, cfg.Channel, cfg.IgnoredUsers)
	if err := svc.RebuildTally(ctx); err != nil {
		return nil, err
	}

	client := irc.NewClient(cfg.Nick, cfg.Token)
	chatters := &TMIChatters{Channel: cfg.Channel}
	handler := NewHandler(client, svc, chatters, provider, log, cfg.Channel)

	b := &Bot{
		client:  client,
		handler: handler,
		cfg:     cfg,
		log:     log,
	}

	client.OnConnect(func() {
		log.Infof("Logged in as | %s", cfg.Nick)
		log.Infof("Channels | [%s]", cfg.Channel)
	})
	client.OnPrivateMessage(b.onMessage)

	return b, nil
}

// Start - подключаемся к чату и крутимся до обрыва соединения
func (b *Bot) Start() error {
	b.client.Join(b.cfg.Channel)
	return b.client.Connect()
}

// onMessage - одна точка входа для всех сообщений чата: команды со
// знаком ? уходят хендлерам (только для стримера), остальное - в ставки
func (b *Bot) onMessage(msg irc.PrivateMessage) {
	// свои же сообщения пропускаем
	if strings.EqualFold(msg.User.Name, b.cfg.Nick) {
		return
	}

	text := msg.Message
	if strings.HasPrefix(text, "?") {
		if msg.User.Badges["broadcaster"] != 1 {
			return
		}
		fields := strings.Fields(strings.TrimPrefix(text, "?"))
		if len(fields) == 0 {
			return
		}
		ctx := context.Background()
		args := strings.Join(fields[1:], " ")
		switch strings.ToLower(fields[0]) {
		case "start":
			b.handler.HandleStart(ctx, msg.User.DisplayName)
		case "end":
			b.handler.HandleEnd(msg.User.DisplayName)
		case "winner":
			b.handler.HandleWinner(ctx, msg.User.DisplayName, args)
		case "stats":
			b.handler.HandleStats()
		case "lastwinner":
			b.handler.HandleLastWinner()
		case "botcheck":
			b.handler.HandleBotCheck(msg.User.DisplayName)
		case "refresh":
			b.handler.HandleRefresh(ctx)
		}
		return
	}

	spans := parseEmoteSpans(msg.Tags["emotes"])
	b.handler.HandleGuess(msg.User.DisplayName, text, spans, strings.Contains(text, "?"))
}
