// Package hallucinations screens final transcription results for text
// that speech recognizers fabricate on silence or noise. The checks
// are purely textual and carry no state between calls.
package hallucinations

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minLength    = 2
	maxLength    = 200
	maxFragments = 4
)

// closingRemarks are phrases cloud recognizers are known to emit on
// near-silent audio, mostly subtitle credits and sign-offs.
var closingRemarks = []string{
	"субтитры",
	"редактор субтитров",
	"продолжение следует",
	"спасибо за просмотр",
	"подписывайтесь на канал",
	"до новых встреч",
	"всем пока",
	"thank you for watching",
	"thanks for watching",
	"see you in the next video",
	"subscribe to the channel",
	"like and subscribe",
}

// fillers are standalone non-lexical sounds.
var fillers = map[string]struct{}{
	"ммм": {}, "эээ": {}, "эм": {}, "мм": {}, "эх": {}, "ах": {}, "ох": {},
	"hmm": {}, "huh": {}, "uh": {}, "um": {}, "mm": {}, "ah": {}, "oh": {},
}

var (
	fragmentSplitter = regexp.MustCompile(`[.!?…]+`)
	nonLetters       = regexp.MustCompile(`[^\p{L}]+`)
)

// Filter reports whether text looks like genuine user speech. It
// returns the trimmed text and false when the input matches a known
// garbage shape.
func Filter(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	length := utf8.RuneCountInString(trimmed)
	if length < minLength || length > maxLength {
		return "", false
	}

	normalized := strings.ToLower(trimmed)
	for _, remark := range closingRemarks {
		if strings.Contains(normalized, remark) {
			return "", false
		}
	}

	if _, ok := fillers[strings.Trim(normalized, " .,!?-")]; ok {
		return "", false
	}

	if countFragments(trimmed) > maxFragments {
		return "", false
	}

	if isRepeatedCluster(nonLetters.ReplaceAllString(normalized, "")) {
		return "", false
	}

	return trimmed, true
}

// isRepeatedCluster reports whether text is one short sound cluster
// repeated over and over, like "ааааа" or "папапапа".
func isRepeatedCluster(text string) bool {
	runes := []rune(text)
	for clusterLen := 1; clusterLen <= 3; clusterLen++ {
		if len(runes) < clusterLen*3 || len(runes)%clusterLen != 0 {
			continue
		}
		cluster := runes[:clusterLen]
		matched := true
		for i := clusterLen; i < len(runes) && matched; i += clusterLen {
			for j := range cluster {
				if runes[i+j] != cluster[j] {
					matched = false
					break
				}
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func countFragments(text string) int {
	fragments := 0
	for _, fragment := range fragmentSplitter.Split(text, -1) {
		if strings.TrimSpace(fragment) != "" {
			fragments++
		}
	}
	return fragments
}
