package feed

import (
	"math"
	"regexp"
	"strings"
)

// relevanceKeywords is the fixed vocabulary used to flag listings that
// overlap the stacks this product targets.
var relevanceKeywords = []string{
	"react", "node", "javascript", "typescript", "frontend", "backend", "full stack",
}

// Relevance scores a listing against the keyword vocabulary. The score grows
// by 20 per matched keyword up to 100; highMatch requires at least 3 matches.
func Relevance(title, category, preview string) (score int, highMatch bool) {
	haystack := strings.ToLower(title + " " + category + " " + preview)

	matches := 0
	for _, keyword := range relevanceKeywords {
		if strings.Contains(haystack, keyword) {
			matches++
		}
	}

	score = matches * 20
	if score > 100 {
		score = 100
	}
	return score, matches >= 3
}

var matchStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "your": {}, "have": {}, "will": {}, "you": {}, "are": {},
	"our": {}, "their": {}, "has": {}, "all": {}, "can": {}, "not": {},
	"but": {}, "who": {}, "what": {}, "when": {}, "where": {}, "why": {},
	"how": {}, "into": {}, "about": {}, "job": {}, "role": {}, "work": {},
	"team": {}, "years": {}, "experience": {},
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// JobMatch is the result of comparing a resume against a job description.
type JobMatch struct {
	MatchPercentage int      `json:"matchPercentage"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	Tag             string   `json:"tag"`
}

// ComputeJobMatch measures keyword overlap between a resume and a job
// description. Purely lexical, no model calls.
func ComputeJobMatch(resumeText, jobDescription string) JobMatch {
	resumeTokens := tokenizeForMatch(resumeText)
	jobTokens, jobOrder := tokenizeOrdered(jobDescription)

	if len(resumeTokens) == 0 || len(jobTokens) == 0 {
		return JobMatch{
			MatchedKeywords: []string{},
			MissingKeywords: []string{},
			Tag:             "Low Match",
		}
	}

	matched := make([]string, 0, 20)
	missing := make([]string, 0, 20)
	for _, token := range jobOrder {
		if _, ok := resumeTokens[token]; ok {
			if len(matched) < 20 {
				matched = append(matched, token)
			}
		} else if len(missing) < 20 {
			missing = append(missing, token)
		}
	}

	percentage := int(math.Round(float64(len(matched)) / float64(len(jobTokens)) * 100))
	if percentage > 100 {
		percentage = 100
	}

	tag := "Low Match"
	switch {
	case percentage >= 70:
		tag = "High Match"
	case percentage >= 40:
		tag = "Moderate Match"
	}

	return JobMatch{
		MatchPercentage: percentage,
		MatchedKeywords: matched,
		MissingKeywords: missing,
		Tag:             tag,
	}
}

func tokenizeForMatch(value string) map[string]struct{} {
	tokens, _ := tokenizeOrdered(value)
	return tokens
}

// tokenizeOrdered returns the unique token set plus the tokens in first-seen
// order, so matched/missing keyword lists are stable.
func tokenizeOrdered(value string) (map[string]struct{}, []string) {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(NormalizeText(value)), " ")

	set := make(map[string]struct{})
	var order []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) < 4 {
			continue
		}
		if _, stop := matchStopWords[token]; stop {
			continue
		}
		if _, seen := set[token]; seen {
			continue
		}
		set[token] = struct{}{}
		order = append(order, token)
	}
	return set, order
}
