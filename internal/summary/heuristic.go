package summary

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theopenlane/policypeek/internal/types"
)

const wordsPerMinute = 200

type topicPattern struct {
	name    string
	pattern *regexp.Regexp
}

var topicPatterns = []topicPattern{
	{name: "data collection", pattern: regexp.MustCompile(`(?i)collect|gathering|obtain`)},
	{name: "personal information", pattern: regexp.MustCompile(`(?i)personal\s+information|personal\s+data`)},
	{name: "cookies", pattern: regexp.MustCompile(`(?i)cookie`)},
	{name: "third party", pattern: regexp.MustCompile(`(?i)third[\s-]party`)},
	{name: "sharing", pattern: regexp.MustCompile(`(?i)share|sharing|disclose`)},
	{name: "rights", pattern: regexp.MustCompile(`(?i)rights|access|delete|opt[\s-]out`)},
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var printer = message.NewPrinter(language.English)

// WordCount returns the number of whitespace separated words in text
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CharacterCount returns the number of characters in text
func CharacterCount(text string) int {
	return len([]rune(text))
}

// ReadingMinutes estimates reading time at 200 words per minute
func ReadingMinutes(words int) int {
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

// SentenceCount counts non-empty segments between sentence terminators
func SentenceCount(text string) int {
	count := 0

	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}

	return count
}

// Topics counts matches for each known topic, in a fixed order
func Topics(text string) []types.TopicCount {
	topics := make([]types.TopicCount, 0, len(topicPatterns))

	for _, tp := range topicPatterns {
		topics = append(topics, types.TopicCount{
			Topic: tp.name,
			Count: len(tp.pattern.FindAllStringIndex(text, -1)),
		})
	}

	return topics
}

// Heuristic produces the keyword-based summary used when no model is available
func Heuristic(text string) (string, []types.TopicCount) {
	words := WordCount(text)
	sentences := SentenceCount(text)

	average := 0
	if sentences > 0 {
		average = int(math.Round(float64(words) / float64(sentences)))
	}

	var b strings.Builder

	b.WriteString("**Basic Analysis:**\n\n")
	b.WriteString(printer.Sprintf("- Document contains %d words across %d sentences\n", words, sentences))
	b.WriteString(printer.Sprintf("- Average sentence length: %d words\n", average))

	topics := Topics(text)

	b.WriteString("\n**Key Topics Detected:**\n")

	for _, tc := range topics {
		if tc.Count == 0 {
			continue
		}

		b.WriteString(printer.Sprintf("- %s: mentioned %d time(s)\n", capitalize(tc.Topic), tc.Count))
	}

	b.WriteString("\n*Note: AI-powered analysis is not currently available. This may be because:*\n")
	b.WriteString("- *The language model needs to be downloaded (try the manual analysis page)*\n")
	b.WriteString("- *No model host is configured or reachable*\n")

	return b.String(), topics
}

// TruncationNote discloses that only the first section of a long document was analyzed
func TruncationNote(originalChars int) string {
	return printer.Sprintf("*Note: This policy was very long (%d characters), so only the first section was analyzed.*\n\n", originalChars)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
