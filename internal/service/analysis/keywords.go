// internal/service/analysis/keywords.go

package analysis

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"newsradar/internal/domain/article"
)

// DefaultTopKeywords is the number of keywords kept per article.
const DefaultTopKeywords = 8

const maxPhraseWords = 3

// rakeStopwords delimit candidate phrases. The list covers common English
// function words; anything between two stopwords is a candidate.
var rakeStopwords = map[string]bool{
	"a": true, "about": true, "above": true, "after": true, "again": true,
	"against": true, "all": true, "am": true, "an": true, "and": true,
	"any": true, "are": true, "as": true, "at": true, "be": true,
	"because": true, "been": true, "before": true, "being": true, "below": true,
	"between": true, "both": true, "but": true, "by": true, "can": true,
	"could": true, "did": true, "do": true, "does": true, "doing": true,
	"down": true, "during": true, "each": true, "few": true, "for": true,
	"from": true, "further": true, "had": true, "has": true, "have": true,
	"having": true, "he": true, "her": true, "here": true, "hers": true,
	"him": true, "his": true, "how": true, "i": true, "if": true,
	"in": true, "into": true, "is": true, "it": true, "its": true,
	"just": true, "me": true, "more": true, "most": true, "my": true,
	"no": true, "nor": true, "not": true, "now": true, "of": true,
	"off": true, "on": true, "once": true, "only": true, "or": true,
	"other": true, "our": true, "out": true, "over": true, "own": true,
	"same": true, "she": true, "should": true, "so": true, "some": true,
	"such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "to": true, "too": true,
	"under": true, "until": true, "up": true, "very": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "whom": true, "why": true,
	"will": true, "with": true, "would": true, "you": true, "your": true,
}

// genericKeywords are filler words that score well but carry no signal.
var genericKeywords = map[string]bool{
	"said": true, "also": true, "according": true, "used": true, "using": true,
	"however": true, "including": true, "addition": true, "example": true,
}

// ExtractKeywords pulls weighted keywords out of article text. Candidate
// phrases are stopword-delimited runs of at most three words, scored by
// word degree over frequency. Short phrases get a boost because one and
// two word keywords search better downstream.
func ExtractKeywords(text string, topN int) []article.Keyword {
	if topN <= 0 {
		topN = DefaultTopKeywords
	}
	if text == "" || text == article.UnavailableText {
		return nil
	}

	phrases := candidatePhrases(strings.ToLower(text))
	if len(phrases) == 0 {
		return nil
	}

	// Classic degree/frequency word scoring over the candidate set.
	freq := map[string]int{}
	degree := map[string]int{}
	for _, words := range phrases {
		for _, w := range words {
			freq[w]++
			degree[w] += len(words) - 1
		}
	}

	type scored struct {
		phrase string
		score  float64
	}
	seen := map[string]bool{}
	ranked := make([]scored, 0, len(phrases))
	for _, words := range phrases {
		phrase := strings.Join(words, " ")
		if seen[phrase] {
			continue
		}
		seen[phrase] = true

		var s float64
		for _, w := range words {
			s += float64(degree[w]+freq[w]) / float64(freq[w])
		}
		ranked = append(ranked, scored{phrase: phrase, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	keywords := make([]article.Keyword, 0, topN)
	picked := map[string]bool{}
	for _, cand := range ranked {
		phrase := strings.TrimSpace(cand.phrase)
		if picked[phrase] || len(phrase) < 3 || len(phrase) > 35 {
			continue
		}
		if isNumericPhrase(phrase) || genericKeywords[phrase] {
			continue
		}

		score := cand.score
		switch len(strings.Fields(phrase)) {
		case 1:
			score *= 1.5
		case 2:
			score *= 1.2
		}

		keywords = append(keywords, article.Keyword{
			Keyword: titleCase(phrase),
			Score:   int(math.Min(100, math.Round(score*5))),
		})
		picked[phrase] = true

		if len(keywords) >= topN {
			break
		}
	}

	sort.SliceStable(keywords, func(i, j int) bool { return keywords[i].Score > keywords[j].Score })
	return keywords
}

// candidatePhrases splits lowercased text into word runs delimited by
// stopwords and sentence punctuation. Interior dots survive so "node.js"
// stays one word. Runs longer than maxPhraseWords are discarded rather
// than truncated.
func candidatePhrases(text string) [][]string {
	var phrases [][]string
	var current []string

	flush := func() {
		if n := len(current); n > 0 && n <= maxPhraseWords {
			phrases = append(phrases, current)
		}
		current = nil
	}

	for _, raw := range strings.Fields(text) {
		word, boundary := trimToken(raw)
		if word == "" || rakeStopwords[word] {
			flush()
			continue
		}
		current = append(current, word)
		if boundary {
			flush()
		}
	}
	flush()
	return phrases
}

// trimToken strips surrounding punctuation from a whitespace-split token
// and reports whether the token ended a phrase (trailing sentence
// punctuation).
func trimToken(raw string) (string, bool) {
	word := strings.TrimLeftFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	boundary := false
	for len(word) > 0 {
		r := rune(word[len(word)-1])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' {
			break
		}
		if r == '.' || r == ',' || r == '!' || r == '?' || r == ';' || r == ':' {
			boundary = true
		}
		word = word[:len(word)-1]
	}
	return word, boundary
}

func isNumericPhrase(phrase string) bool {
	hasDigit := false
	for _, r := range phrase {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return hasDigit
}

func titleCase(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// MergeKeywords appends classifier keywords that the extractor missed, at a
// fixed mid-range weight. Presence is checked case-insensitively.
func MergeKeywords(extracted []article.Keyword, aiKeywords []string) []article.Keyword {
	known := make(map[string]bool, len(extracted))
	for _, kw := range extracted {
		known[strings.ToLower(kw.Keyword)] = true
	}

	merged := extracted
	for _, kw := range aiKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || known[strings.ToLower(kw)] {
			continue
		}
		merged = append(merged, article.Keyword{Keyword: kw, Score: article.MergedKeywordWeight})
		known[strings.ToLower(kw)] = true
	}
	return merged
}

// SeedKeywords derives up to five trend search seeds for an article, in
// priority order: classifier trend keywords, classifier entity keywords, a
// known high-signal term found in the title, short extracted keywords, and
// finally a category-derived term.
func SeedKeywords(cls *article.Classification, title string, extracted []article.Keyword) []string {
	var seeds []string
	if cls != nil {
		seeds = append(seeds, cls.Metadata.TrendKeywords...)
		if len(seeds) == 0 && len(cls.Metadata.Keywords) > 0 {
			limit := len(cls.Metadata.Keywords)
			if limit > 3 {
				limit = 3
			}
			seeds = append(seeds, cls.Metadata.Keywords[:limit]...)
		}
	}

	titleLower := strings.ToLower(title)
	for _, term := range knownTrendTerms {
		if !strings.Contains(titleLower, term) {
			continue
		}
		display := titleCase(term)
		if len(term) <= 3 {
			display = strings.ToUpper(term)
		}
		if !containsFold(seeds, display) {
			seeds = append([]string{display}, seeds...)
		}
		break
	}

	for _, kw := range extracted {
		if len(seeds) >= 5 {
			break
		}
		if len(strings.Fields(kw.Keyword)) <= 2 && len(kw.Keyword) >= 3 && !containsFold(seeds, kw.Keyword) {
			seeds = append(seeds, kw.Keyword)
		}
	}

	if len(seeds) == 0 {
		term := "Cybersecurity"
		if cls != nil {
			if mapped, ok := categorySeedTerms[cls.Content.Category]; ok {
				term = mapped
			}
		}
		seeds = append(seeds, term)
	}

	if len(seeds) > 5 {
		seeds = seeds[:5]
	}
	return seeds
}

func containsFold(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}
