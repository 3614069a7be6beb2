package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/doomercreatine/MasterCasketBot/internal/storage"
)

var (
	// ErrStillOpen - победителя ищем только после ?end
	ErrStillOpen = errors.New("round is still open")
	// ErrBadTarget - стоимость каскета не распарсилась
	ErrBadTarget = errors.New("bad casket value")
	// ErrNoGuesses - в раунде не оказалось ни одной ставки
	ErrNoGuesses = errors.New("no guesses were saved")
)

// Store - журнал раундов (Postgres в проде)
type Store interface {
	Append(ctx context.Context, records []storage.Record) error
	ScanAll(ctx context.Context) ([]storage.Record, error)
}

// Archiver - файловый архив сырых сообщений раунда
type Archiver interface {
	Write(key string, payload []byte) error
}

// OutcomeStatus - результат обработки сообщения со ставкой
type OutcomeStatus int

const (
	// OutcomeIgnored - раунд закрыт, команда или служебный аккаунт
	OutcomeIgnored OutcomeStatus = iota
	// OutcomeInvalid - число не распарсилось, сообщение залогировано
	OutcomeInvalid
	// OutcomeAccepted - ставка принята
	OutcomeAccepted
	// OutcomeUnchanged - то же число повторно
	OutcomeUnchanged
	// OutcomeConfirmNeeded - нужно прислать новое число еще раз
	OutcomeConfirmNeeded
	// OutcomeRevised - ставка заменена и заморожена
	OutcomeRevised
	// OutcomeLocked - ставка уже заморожена
	OutcomeLocked
)

// Outcome - что случилось со ставкой; Current и Proposed заполняются
// для OutcomeConfirmNeeded, чтобы транспорт мог составить подсказку.
type Outcome struct {
	Status   OutcomeStatus
	Current  int64
	Proposed int64
}

// Resolution - итог раунда для объявления в чате
type Resolution struct {
	Winners []string
	Guess   int64
	Casket  int64
	Diff    int64
	Entries int
	Wins    map[string]int
}

// LastWinner - кто выиграл прошлый раунд
type LastWinner struct {
	Winners []string
	Guess   int64
	Casket  int64
}

// Stats - счетчики с момента запуска бота
type Stats struct {
	TotalGuesses int
	Caskets      int
	Average      int64
}

// Service - владелец всего состояния игры: раунд, счет побед,
// последний победитель. Все операции идут через один мьютекс,
// потому что транспорт может дергать их из своих горутин.
type Service struct {
	mu      sync.Mutex
	store   Store
	archive Archiver
	log     logrus.FieldLogger
	channel string
	ignored map[string]struct{}

	norm  *Normalizer
	round *Round

	tally   map[string]int
	last    *LastWinner
	caskets []int64
	guesses int
}

// New - собираем сервис; счет побед загружается отдельным RebuildTally
func New(store Store, archive Archiver, norm *Normalizer, log logrus.FieldLogger, channel string, ignored []string) *Service {
	ig := make(map[string]struct{}, len(ignored))
	for _, name := range ignored {
		ig[strings.ToLower(name)] = struct{}{}
	}
	return &Service{
		store:   store,
		archive: archive,
		log:     log,
		channel: channel,
		ignored: ig,
		norm:    norm,
		round:   NewRound(),
		tally:   map[string]int{},
	}
}

// RebuildTally пересобирает счет побед, проигрывая весь журнал
func (s *Service) RebuildTally(ctx context.Context) error {
	records, err := s.store.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan records: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tally = map[string]int{}
	for _, r := range records {
		if r.Win {
			s.tally[r.Name]++
		}
	}
	return nil
}

// Open - начинаем прием ставок со свежим снимком зрителей
func (s *Service) Open(participants []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Open(participants)
}

// Close - прекращаем прием ставок
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Close()
}

// SubmitGuess прогоняет сообщение через нормализатор и протокол
// пересмотра. Сообщения вне раунда, команды и служебные аккаунты
// молча игнорируются; ошибки нормализации уходят только в лог.
func (s *Service) SubmitGuess(owner, raw string, spans []Span, isCommand bool) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.round.IsOpen() || isCommand {
		return Outcome{Status: OutcomeIgnored}
	}
	if _, ok := s.ignored[strings.ToLower(owner)]; ok {
		return Outcome{Status: OutcomeIgnored}
	}

	s.round.RecordMessage(owner, raw)

	value, err := s.norm.Normalize(raw, spans, s.round.Participants())
	if err != nil {
		s.log.Warnf("could not parse @%s guess: %v", owner, err)
		return Outcome{Status: OutcomeInvalid}
	}

	prev := s.round.Entry(owner)
	switch s.round.Submit(owner, value) {
	case GuessAccepted:
		s.guesses++
		return Outcome{Status: OutcomeAccepted, Current: value}
	case GuessUnchanged:
		return Outcome{Status: OutcomeUnchanged, Current: value}
	case GuessConfirmNeeded:
		return Outcome{Status: OutcomeConfirmNeeded, Current: prev.Value, Proposed: value}
	case GuessRevised:
		return Outcome{Status: OutcomeRevised, Current: value}
	default:
		return Outcome{Status: OutcomeLocked, Current: prev.Value}
	}
}

// Resolve ищет ставку с минимальной разницей от стоимости каскета.
// Все участники с минимальной разницей выигрывают одновременно, каждому
// плюс один в счет побед. Журнал и архив пишутся по возможности: сбой
// записи логируется, но счет в памяти не откатывается.
func (s *Service) Resolve(ctx context.Context, targetRaw string) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round.IsOpen() {
		return nil, ErrStillOpen
	}

	target, err := s.norm.Normalize(targetRaw, nil, s.round.Participants())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTarget, err)
	}

	now := time.Now()
	guesses := s.round.Guesses()
	if len(guesses) == 0 {
		s.writeArchive(now, target)
		return nil, ErrNoGuesses
	}

	minDiff := int64(-1)
	for _, v := range guesses {
		d := absDiff(target, v)
		if minDiff < 0 || d < minDiff {
			minDiff = d
		}
	}

	var winners []string
	for name, v := range guesses {
		if absDiff(target, v) == minDiff {
			winners = append(winners, name)
		}
	}
	sort.Strings(winners)

	wins := make(map[string]int, len(winners))
	winnerSet := make(map[string]struct{}, len(winners))
	for _, name := range winners {
		s.tally[name]++
		wins[name] = s.tally[name]
		winnerSet[name] = struct{}{}
	}

	roundID := uuid.New()
	records := make([]storage.Record, 0, len(guesses))
	for name, v := range guesses {
		_, won := winnerSet[name]
		records = append(records, storage.Record{
			RoundID: roundID,
			Date:    now.Format("20060102"),
			Time:    now.Format("150405"),
			Name:    name,
			Guess:   v,
			Casket:  target,
			Win:     won,
		})
	}
	if err := s.store.Append(ctx, records); err != nil {
		s.log.Errorf("failed to append round records: %v", err)
	}

	s.last = &LastWinner{Winners: winners, Guess: guesses[winners[0]], Casket: target}
	s.caskets = append(s.caskets, target)
	s.writeArchive(now, target)

	return &Resolution{
		Winners: winners,
		Guess:   guesses[winners[0]],
		Casket:  target,
		Diff:    minDiff,
		Entries: len(guesses),
		Wins:    wins,
	}, nil
}

// writeArchive скидывает сырые сообщения и ставки раунда в файл
func (s *Service) writeArchive(now time.Time, target int64) {
	payload, err := json.MarshalIndent([]any{
		s.round.Messages(),
		s.round.Guesses(),
		map[string]int64{"casket": target},
	}, "", "    ")
	if err != nil {
		s.log.Errorf("failed to marshal round archive: %v", err)
		return
	}
	key := now.Format("20060102-150405") + "-" + s.channel
	if err := s.archive.Write(key, payload); err != nil {
		s.log.Errorf("failed to write round archive: %v", err)
	}
}

// Stats - счетчики текущей сессии
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{TotalGuesses: s.guesses, Caskets: len(s.caskets)}
	if len(s.caskets) > 0 {
		var sum int64
		for _, v := range s.caskets {
			sum += v
		}
		st.Average = sum / int64(len(s.caskets))
	}
	return st
}

// LastWinner - итог прошлого раунда, nil если раундов еще не было
func (s *Service) LastWinner() *LastWinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	copied := *s.last
	copied.Winners = append([]string(nil), s.last.Winners...)
	return &copied
}

// Reset - команда ?refresh: новый набор эмоутов, чистое состояние
// сессии и заново загруженный счет побед
func (s *Service) Reset(ctx context.Context, emotes []string) error {
	s.mu.Lock()
	s.norm = NewNormalizer(emotes)
	s.round = NewRound()
	s.last = nil
	s.caskets = nil
	s.guesses = 0
	s.mu.Unlock()
	return s.RebuildTally(ctx)
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
