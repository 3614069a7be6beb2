package game

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doomercreatine/MasterCasketBot/internal/storage"
)

// mockStore - мок-реализация Store для тестов
type mockStore struct {
	appended  []storage.Record
	appendErr error
	scanned   []storage.Record
	scanErr   error
}

func (m *mockStore) Append(ctx context.Context, records []storage.Record) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, records...)
	return nil
}

func (m *mockStore) ScanAll(ctx context.Context) ([]storage.Record, error) {
	return m.scanned, m.scanErr
}

// mockArchive - мок-реализация Archiver
type mockArchive struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (m *mockArchive) Write(key string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, key)
	m.payloads = append(m.payloads, payload)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(store *mockStore, arch *mockArchive) *Service {
	return New(store, arch, NewNormalizer(nil), testLogger(), "hey_jase", []string{"nightbot"})
}

func TestServiceResolveTie(t *testing.T) {
	store := &mockStore{}
	arch := &mockArchive{}
	svc := newTestService(store, arch)

	require.NoError(t, svc.Open([]string{"a", "b", "c"}))
	assert.Equal(t, OutcomeAccepted, svc.SubmitGuess("a", "100", nil, false).Status)
	assert.Equal(t, OutcomeAccepted, svc.SubmitGuess("b", "100", nil, false).Status)
	assert.Equal(t, OutcomeAccepted, svc.SubmitGuess("c", "90", nil, false).Status)
	require.NoError(t, svc.Close())

	res, err := svc.Resolve(context.Background(), "100")
	require.NoError(t, err)

	// оба участника с нулевой разницей выигрывают одновременно
	assert.Equal(t, []string{"a", "b"}, res.Winners)
	assert.Equal(t, int64(0), res.Diff)
	assert.Equal(t, int64(100), res.Guess)
	assert.Equal(t, int64(100), res.Casket)
	assert.Equal(t, 3, res.Entries)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, res.Wins)

	// запись получает каждый участник, победа - только победители
	require.Len(t, store.appended, 3)
	wins := map[string]bool{}
	for _, r := range store.appended {
		wins[r.Name] = r.Win
		assert.Equal(t, int64(100), r.Casket)
		assert.Equal(t, store.appended[0].RoundID, r.RoundID)
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": false}, wins)

	// архив раунда записан
	assert.Len(t, arch.keys, 1)
	assert.Contains(t, arch.keys[0], "hey_jase")
}

func TestServiceResolveStillOpen(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "100", nil, false)

	_, err := svc.Resolve(context.Background(), "100")
	assert.ErrorIs(t, err, ErrStillOpen)
	// ошибка ничего не мутирует
	assert.Empty(t, store.appended)
	assert.Nil(t, svc.LastWinner())
}

func TestServiceResolveBadTarget(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "100", nil, false)
	require.NoError(t, svc.Close())

	_, err := svc.Resolve(context.Background(), "not a number")
	assert.ErrorIs(t, err, ErrBadTarget)
}

func TestServiceResolveNoGuesses(t *testing.T) {
	store := &mockStore{}
	arch := &mockArchive{}
	svc := newTestService(store, arch)

	require.NoError(t, svc.Open(nil))
	require.NoError(t, svc.Close())

	_, err := svc.Resolve(context.Background(), "500k")
	assert.ErrorIs(t, err, ErrNoGuesses)
	assert.Empty(t, store.appended)
	// пустой раунд все равно архивируется
	assert.Len(t, arch.keys, 1)
}

func TestServiceResolveShorthandTarget(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "1.1m", nil, false)
	svc.SubmitGuess("b", "900k", nil, false)
	require.NoError(t, svc.Close())

	res, err := svc.Resolve(context.Background(), "1.2m")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Winners)
	assert.Equal(t, int64(100_000), res.Diff)
}

func TestServiceRevisionThroughMessages(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})
	require.NoError(t, svc.Open(nil))

	out := svc.SubmitGuess("doomer", "100", nil, false)
	assert.Equal(t, OutcomeAccepted, out.Status)

	out = svc.SubmitGuess("doomer", "200", nil, false)
	assert.Equal(t, OutcomeConfirmNeeded, out.Status)
	assert.Equal(t, int64(100), out.Current)
	assert.Equal(t, int64(200), out.Proposed)

	out = svc.SubmitGuess("doomer", "200", nil, false)
	assert.Equal(t, OutcomeRevised, out.Status)

	out = svc.SubmitGuess("doomer", "300", nil, false)
	assert.Equal(t, OutcomeLocked, out.Status)
	assert.Equal(t, int64(200), out.Current)

	require.NoError(t, svc.Close())
	res, err := svc.Resolve(context.Background(), "200")
	require.NoError(t, err)
	assert.Equal(t, []string{"doomer"}, res.Winners)
	assert.Equal(t, int64(200), res.Guess)
}

func TestServiceSubmitIgnored(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})

	// раунд закрыт
	out := svc.SubmitGuess("a", "100", nil, false)
	assert.Equal(t, OutcomeIgnored, out.Status)

	require.NoError(t, svc.Open(nil))

	// сообщение с командным префиксом
	out = svc.SubmitGuess("a", "?stats 100", nil, true)
	assert.Equal(t, OutcomeIgnored, out.Status)

	// служебный аккаунт, регистр не важен
	out = svc.SubmitGuess("NightBot", "100", nil, false)
	assert.Equal(t, OutcomeIgnored, out.Status)
}

func TestServiceSubmitInvalidLogged(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})
	require.NoError(t, svc.Open(nil))

	out := svc.SubmitGuess("a", "good luck everyone", nil, false)
	assert.Equal(t, OutcomeInvalid, out.Status)

	// ошибка разбора не мешает другим участникам
	out = svc.SubmitGuess("b", "250k", nil, false)
	assert.Equal(t, OutcomeAccepted, out.Status)
}

func TestServiceRebuildTallyReplay(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "100", nil, false)
	svc.SubmitGuess("b", "90", nil, false)
	require.NoError(t, svc.Close())
	res, err := svc.Resolve(context.Background(), "100")
	require.NoError(t, err)

	// журнал проигрывается в тот же счет побед, что был вживую
	replay := &mockStore{scanned: store.appended}
	svc2 := newTestService(replay, &mockArchive{})
	require.NoError(t, svc2.RebuildTally(context.Background()))

	require.NoError(t, svc2.Open(nil))
	svc2.SubmitGuess("a", "100", nil, false)
	require.NoError(t, svc2.Close())
	res2, err := svc2.Resolve(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, res.Wins["a"]+1, res2.Wins["a"])
}

func TestServiceAppendFailureKeepsTally(t *testing.T) {
	store := &mockStore{appendErr: errors.New("db down")}
	svc := newTestService(store, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "100", nil, false)
	require.NoError(t, svc.Close())

	// сбой журнала не откатывает счет и не валит резолв
	res, err := svc.Resolve(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Wins["a"])
	lw := svc.LastWinner()
	require.NotNil(t, lw)
	assert.Equal(t, []string{"a"}, lw.Winners)
}

func TestServiceOpenClearsPriorRound(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "100", nil, false)
	require.NoError(t, svc.Close())
	_, err := svc.Resolve(context.Background(), "100")
	require.NoError(t, err)

	// новый раунд не видит старых ставок
	require.NoError(t, svc.Open(nil))
	require.NoError(t, svc.Close())
	_, err = svc.Resolve(context.Background(), "100")
	assert.ErrorIs(t, err, ErrNoGuesses)
}

func TestServiceStatsAndLastWinner(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockArchive{})

	assert.Nil(t, svc.LastWinner())
	assert.Equal(t, Stats{}, svc.Stats())

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "1m", nil, false)
	svc.SubmitGuess("b", "3m", nil, false)
	require.NoError(t, svc.Close())
	_, err := svc.Resolve(context.Background(), "2m")
	require.NoError(t, err)

	st := svc.Stats()
	assert.Equal(t, 2, st.TotalGuesses)
	assert.Equal(t, 1, st.Caskets)
	assert.Equal(t, int64(2_000_000), st.Average)

	lw := svc.LastWinner()
	require.NotNil(t, lw)
	assert.Equal(t, int64(2_000_000), lw.Casket)
}

func TestServiceReset(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, &mockArchive{})

	require.NoError(t, svc.Open(nil))
	svc.SubmitGuess("a", "100", nil, false)
	require.NoError(t, svc.Close())
	_, err := svc.Resolve(context.Background(), "100")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background(), []string{"POGGIES"}))
	assert.Nil(t, svc.LastWinner())
	assert.Equal(t, Stats{}, svc.Stats())
}
