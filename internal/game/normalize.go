package game

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrNoNumericToken - в сообщении не нашлось ни одного числа
	ErrNoNumericToken = errors.New("no numeric token found")
	// ErrParseError - число нашлось, но распарсить его не вышло
	ErrParseError = errors.New("could not parse numeric token")
)

// Span - позиция эмоута в сообщении (индексы рун, включительно),
// как их присылает Twitch в теге emotes.
type Span struct {
	Start int
	End   int
}

// Диапазоны пиктограмм, которые чистим из сообщений.
var pictographs = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}]+`)

var multiSpace = regexp.MustCompile(` +`)

// Normalizer превращает сырой текст сообщения в целочисленную ставку.
// Набор эмоутов читается только при создании, сам Normalizer состояния
// не имеет.
type Normalizer struct {
	emotes map[string]struct{}
}

// NewNormalizer - создаем нормализатор с известным набором эмоутов
func NewNormalizer(emotes []string) *Normalizer {
	set := make(map[string]struct{}, len(emotes))
	for _, e := range emotes {
		set[e] = struct{}{}
	}
	return &Normalizer{emotes: set}
}

// Normalize извлекает число из сообщения: вырезает эмоуты по спанам,
// убирает упоминания, токены-эмоуты и ники участников, пиктограммы,
// затем ищет числовой фрагмент и разворачивает сокращения k/m/b.
func (n *Normalizer) Normalize(raw string, spans []Span, participants map[string]struct{}) (int64, error) {
	text := stripSpans(raw, spans)
	text = strings.ReplaceAll(text, "@", "")

	var kept []string
	for _, word := range strings.Fields(text) {
		if _, ok := n.emotes[word]; ok {
			continue
		}
		if _, ok := participants[word]; ok {
			continue
		}
		kept = append(kept, word)
	}
	text = strings.Join(kept, " ")
	text = pictographs.ReplaceAllString(text, "")

	token, ok := extractNumeric(text)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoNumericToken, raw)
	}
	return expand(token)
}

// stripSpans удаляет указанные диапазоны рун и схлопывает пробелы
func stripSpans(raw string, spans []Span) string {
	runes := []rune(raw)
	for _, sp := range spans {
		for i := sp.Start; i <= sp.End && i < len(runes); i++ {
			if i >= 0 {
				runes[i] = ' '
			}
		}
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(string(runes), " "))
}

func isUnit(r rune) bool {
	switch r {
	case 'k', 'K', 'm', 'M', 'b', 'B':
		return true
	}
	return false
}

func isRunChar(r rune) bool {
	return unicode.IsDigit(r) || r == ' ' || r == '\t' || r == ',' || r == '.'
}

// extractNumeric ищет первый подходящий числовой фрагмент: максимальную
// последовательность из цифр, пробелов, запятых и точек, не соседствующую
// с буквами. Единственное исключение - одна буква k/m/b сразу после
// последовательности (за ней могут идти цифры, но не другая буква).
func extractNumeric(text string) (string, bool) {
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !isRunChar(runes[i]) {
			i++
			continue
		}
		j := i
		hasDigit := false
		for j < len(runes) && isRunChar(runes[j]) {
			if unicode.IsDigit(runes[j]) {
				hasDigit = true
			}
			j++
		}
		start := i
		i = j
		if !hasDigit {
			continue
		}
		// пропускаем ведущие пробелы, чтобы проверить соседа слева
		lead := start
		for lead < j && (runes[lead] == ' ' || runes[lead] == '\t') {
			lead++
		}
		if lead > 0 && unicode.IsLetter(runes[lead-1]) {
			continue
		}
		end := j
		if end < len(runes) && isUnit(runes[end]) {
			end++
			for end < len(runes) && unicode.IsDigit(runes[end]) {
				end++
			}
		}
		if end < len(runes) && unicode.IsLetter(runes[end]) {
			continue
		}
		return strings.TrimSpace(string(runes[lead:end])), true
	}
	return "", false
}

// expand разворачивает сокращение k/m/b либо парсит обычное целое
func expand(token string) (int64, error) {
	token = strings.ToLower(strings.ReplaceAll(token, ",", "."))
	last := rune(token[len(token)-1])
	if isUnit(last) {
		mult := map[rune]float64{'k': 1e3, 'm': 1e6, 'b': 1e9}[last]
		f, err := strconv.ParseFloat(strings.TrimSpace(token[:len(token)-1]), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrParseError, token)
		}
		return int64(f * mult), nil
	}
	// чистим пунктуацию, буквы оставляем - их отловит ParseInt
	var plain strings.Builder
	for _, r := range token {
		if unicode.IsDigit(r) || unicode.IsLetter(r) {
			plain.WriteRune(r)
		}
	}
	v, err := strconv.ParseInt(plain.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParseError, token)
	}
	return v, nil
}
