package game

import "errors"

var (
	// ErrAlreadyOpen - раунд уже открыт, сначала нужен ?end
	ErrAlreadyOpen = errors.New("round already open")
	// ErrNotOpen - раунд и так закрыт
	ErrNotOpen = errors.New("round not open")
)

// RevisionState - стадия жизни ставки участника
type RevisionState int

const (
	// FirstGuess - первая ставка, можно один раз поменять
	FirstGuess RevisionState = iota
	// PendingConfirmation - участник прислал другое число, ждем подтверждения
	PendingConfirmation
	// Locked - ставка заморожена до конца раунда
	Locked
)

// Entry - ставка одного участника
type Entry struct {
	Value int64
	State RevisionState
}

// SubmitStatus - что произошло со ставкой после очередного сообщения
type SubmitStatus int

const (
	// GuessAccepted - первая ставка записана
	GuessAccepted SubmitStatus = iota
	// GuessUnchanged - то же число повторно, ничего не меняем
	GuessUnchanged
	// GuessConfirmNeeded - новое число, ждем повторной отправки
	GuessConfirmNeeded
	// GuessRevised - подтвержденная замена, ставка заморожена
	GuessRevised
	// GuessLocked - ставка уже заморожена, число игнорируем
	GuessLocked
)

// Round держит состояние одного раунда: флаг open, ставки, сырые
// сообщения для архива и снимок участников на момент старта.
type Round struct {
	open         bool
	participants map[string]struct{}
	entries      map[string]*Entry
	messages     map[string]string
	guessers     int
}

func NewRound() *Round {
	return &Round{
		participants: map[string]struct{}{},
		entries:      map[string]*Entry{},
		messages:     map[string]string{},
	}
}

// Open - начинаем новый раунд, все прошлые ставки стираются
func (r *Round) Open(participants []string) error {
	if r.open {
		return ErrAlreadyOpen
	}
	r.participants = make(map[string]struct{}, len(participants))
	for _, p := range participants {
		r.participants[p] = struct{}{}
	}
	r.entries = map[string]*Entry{}
	r.messages = map[string]string{}
	r.guessers = 0
	r.open = true
	return nil
}

// Close - закрываем прием ставок, сами ставки остаются для резолва
func (r *Round) Close() error {
	if !r.open {
		return ErrNotOpen
	}
	r.open = false
	return nil
}

func (r *Round) IsOpen() bool {
	return r.open
}

// RecordMessage - пишем сырое сообщение в журнал раунда
func (r *Round) RecordMessage(owner, raw string) {
	r.messages[owner] = raw
}

// Submit применяет протокол пересмотра ставки:
// нет ставки -> FirstGuess; другое число при FirstGuess -> ждем
// подтверждения, само число еще не меняется; любое число при
// PendingConfirmation -> записываем и замораживаем; после Locked
// ничего не меняется.
func (r *Round) Submit(owner string, value int64) SubmitStatus {
	e, ok := r.entries[owner]
	if !ok {
		r.entries[owner] = &Entry{Value: value, State: FirstGuess}
		r.guessers++
		return GuessAccepted
	}
	switch e.State {
	case FirstGuess:
		if e.Value == value {
			return GuessUnchanged
		}
		e.State = PendingConfirmation
		return GuessConfirmNeeded
	case PendingConfirmation:
		e.Value = value
		e.State = Locked
		return GuessRevised
	default:
		return GuessLocked
	}
}

// Entry - текущая ставка участника, nil если ее нет
func (r *Round) Entry(owner string) *Entry {
	e, ok := r.entries[owner]
	if !ok {
		return nil
	}
	copied := *e
	return &copied
}

// Guesses - снимок всех ставок
func (r *Round) Guesses() map[string]int64 {
	out := make(map[string]int64, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.Value
	}
	return out
}

// Messages - снимок журнала сообщений
func (r *Round) Messages() map[string]string {
	out := make(map[string]string, len(r.messages))
	for name, m := range r.messages {
		out[name] = m
	}
	return out
}

// Participants - снимок списка зрителей на момент старта
func (r *Round) Participants() map[string]struct{} {
	return r.participants
}

// GuessCount - сколько участников оставили хотя бы одну ставку
func (r *Round) GuessCount() int {
	return r.guessers
}
