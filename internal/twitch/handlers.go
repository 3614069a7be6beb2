package twitch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/doomercreatine/MasterCasketBot/internal/emotes"
	"github.com/doomercreatine/MasterCasketBot/internal/game"
)

// MessageSender определяет интерфейс для отправки сообщений в чат.
type MessageSender interface {
	Say(channel, text string)
}

// GuessService - ядро игры, за которым ходят все команды
type GuessService interface {
	Open(participants []string) error
	Close() error
	SubmitGuess(owner, raw string, spans []game.Span, isCommand bool) game.Outcome
	Resolve(ctx context.Context, targetRaw string) (*game.Resolution, error)
	Stats() game.Stats
	LastWinner() *game.LastWinner
	Reset(ctx context.Context, emotes []string) error
}

// ChatterSource - список зрителей канала на момент старта раунда
type ChatterSource interface {
	Chatters(ctx context.Context) ([]string, error)
}

type Handler struct {
	Bot      MessageSender
	Service  GuessService
	Chatters ChatterSource
	Emotes   emotes.Provider
	Log      logrus.FieldLogger
	Channel  string
}

func NewHandler(bot MessageSender, service GuessService, chatters ChatterSource, provider emotes.Provider, log logrus.FieldLogger, channel string) *Handler {
	return &Handler{
		Bot:      bot,
		Service:  service,
		Chatters: chatters,
		Emotes:   provider,
		Log:      log,
		Channel:  channel,
	}
}

// HandleStart - ?start
func (h *Handler) HandleStart(ctx context.Context, displayName string) {
	chatters, err := h.Chatters.Chatters(ctx)
	if err != nil {
		h.Log.Errorf("failed to fetch chatters: %v", err)
	}

	if err := h.Service.Open(chatters); err != nil {
		h.Bot.Say(h.Channel, "Guessing already enabled, please ?end before starting a new one.")
		return
	}
	h.Bot.Say(h.Channel, "Guessing for Master Casket value is now OPEN! POGGIES")
	h.Log.Infof("%s has started logging guesses in channel: %s", displayName, h.Channel)
}

// HandleEnd - ?end
func (h *Handler) HandleEnd(displayName string) {
	if err := h.Service.Close(); err != nil {
		h.Bot.Say(h.Channel, "Guessing is not currently enabled, oops. mericCat")
		h.Log.Infof("%s tried to end guessing in %s but it was not started.", displayName, h.Channel)
		return
	}
	h.Bot.Say(h.Channel, "]=-[]=-[]=-[]=-[]=-[]=-[]=-[]=-[]=-[]=-[")
	h.Log.Infof("%s has ended logging guesses in channel: %s", displayName, h.Channel)
}

// HandleWinner - ?winner <стоимость каскета>
func (h *Handler) HandleWinner(ctx context.Context, displayName, target string) {
	res, err := h.Service.Resolve(ctx, target)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrStillOpen):
		h.Bot.Say(h.Channel, "Hey you need to ?end the guessing first 4Head")
		h.Log.Infof("%s tried to pick a winner in %s without ending first.", displayName, h.Channel)
		return
	case errors.Is(err, game.ErrBadTarget):
		h.Bot.Say(h.Channel, "Sorry, could not parse that casket value. mericCat")
		h.Log.Warnf("%s sent an unparseable casket value: %q", displayName, target)
		return
	case errors.Is(err, game.ErrNoGuesses):
		h.Bot.Say(h.Channel, "Something went wrong, there were no guesses saved. mericChicken")
		h.Log.Infof("%s tried picking a winner in %s, but no guesses were logged.", displayName, h.Channel)
		return
	default:
		h.Log.Errorf("failed to resolve round: %v", err)
		return
	}

	h.Bot.Say(h.Channel, fmt.Sprintf(
		"Closest guess: %s Clap out of %d entries with a guess of %s [Difference: %s]. %s",
		mentions(res.Winners), res.Entries, comma(res.Guess), comma(res.Diff), winsSummary(res.Winners, res.Wins)))
	h.Log.Infof("%s has chosen a winner in %s. Writing guesses to file.", displayName, h.Channel)
}

// HandleStats - ?stats
func (h *Handler) HandleStats() {
	st := h.Service.Stats()
	if st.Caskets == 0 {
		h.Bot.Say(h.Channel, "No caskets logged today.")
		return
	}
	h.Bot.Say(h.Channel, fmt.Sprintf(
		"Today's guesses: %d. Caskets today: %d Average casket value: %sgp HYPERS",
		st.TotalGuesses, st.Caskets, comma(st.Average)))
}

// HandleLastWinner - ?lastwinner
func (h *Handler) HandleLastWinner() {
	lw := h.Service.LastWinner()
	if lw == nil {
		h.Bot.Say(h.Channel, "No winners today FeelsBadMan")
		return
	}
	h.Bot.Say(h.Channel, fmt.Sprintf(
		"The last winner was: %s with a guess of %sgp on a %sgp casket.",
		strings.Join(lw.Winners, ", "), comma(lw.Guess), comma(lw.Casket)))
}

// HandleBotCheck - ?botcheck, проверка что бот жив
func (h *Handler) HandleBotCheck(displayName string) {
	h.Bot.Say(h.Channel, fmt.Sprintf("/me is online and running %s POGGIES", displayName))
	h.Log.Infof("%s has checked if the bot is online in %s", displayName, h.Channel)
}

// HandleRefresh - ?refresh, перечитываем эмоуты и сбрасываем сессию
func (h *Handler) HandleRefresh(ctx context.Context) {
	h.Bot.Say(h.Channel, "Bot is being refreshed")
	list, err := h.Emotes.Emotes(ctx)
	if err != nil {
		h.Log.Errorf("failed to refresh emotes: %v", err)
		return
	}
	if err := h.Service.Reset(ctx, list); err != nil {
		h.Log.Errorf("failed to reset service: %v", err)
	}
}

// HandleGuess - любое обычное сообщение во время открытого раунда
func (h *Handler) HandleGuess(owner, raw string, spans []game.Span, isCommand bool) {
	out := h.Service.SubmitGuess(owner, raw, spans, isCommand)
	if out.Status == game.OutcomeConfirmNeeded {
		h.Bot.Say(h.Channel, fmt.Sprintf(
			"@%s. You guessed %s, If you want to keep %s send it again.",
			owner, comma(out.Current), comma(out.Proposed)))
	}
}
