// Package classifier maps free-text transaction descriptions onto the
// closed set of subscription services sold by the business.
package classifier

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Service is a tag from the closed service taxonomy.
type Service string

const (
	Netflix     Service = "NETFLIX"
	DisneyPlus  Service = "DISNEY+"
	PrimeVideo  Service = "PRIME VIDEO"
	HBOMax      Service = "HBO MAX"
	Plex        Service = "PLEX"
	IPTV        Service = "IPTV"
	Combo       Service = "COMBO"
	Spotify     Service = "SPOTIFY"
	YouTube     Service = "YOUTUBE"
	StarPlus    Service = "STAR+"
	Paramount   Service = "PARAMOUNT+"
	Crunchyroll Service = "CRUNCHYROLL"
	Generic     Service = "GENERICO"
)

type rule struct {
	keywords []string
	tag      Service
}

// Rule order is the precedence contract: the first rule whose keyword
// appears in the text wins, so broad keywords like "max" or "star" only
// apply when nothing above them matched.
var rules = []rule{
	{[]string{"netflix", "nfx"}, Netflix},
	{[]string{"disney"}, DisneyPlus},
	{[]string{"prime"}, PrimeVideo},
	{[]string{"hbo", "max"}, HBOMax},
	{[]string{"plex"}, Plex},
	{[]string{"iptv", "magis"}, IPTV},
	{[]string{"combo"}, Combo},
	{[]string{"spotify"}, Spotify},
	{[]string{"youtube"}, YouTube},
	{[]string{"start", "star"}, StarPlus},
	{[]string{"paramount"}, Paramount},
	{[]string{"crunchyroll"}, Crunchyroll},
}

// Engine matches all keywords in a single pass and resolves precedence by
// rule position, lowest index winning.
type Engine struct {
	matcher   *ahocorasick.Matcher
	ruleIndex []int // pattern index -> position in the rule table
}

// New builds the matcher from the fixed rule table.
func New() *Engine {
	var patterns [][]byte
	var ruleIndex []int
	for i, r := range rules {
		for _, kw := range r.keywords {
			patterns = append(patterns, []byte(kw))
			ruleIndex = append(ruleIndex, i)
		}
	}
	return &Engine{
		matcher:   ahocorasick.NewMatcher(patterns),
		ruleIndex: ruleIndex,
	}
}

// Classify returns the service tag for a description. Unmatched text yields
// Generic.
func (e *Engine) Classify(text string) Service {
	if text == "" {
		return Generic
	}
	matches := e.matcher.Match([]byte(strings.ToLower(text)))
	if len(matches) == 0 {
		return Generic
	}

	best := -1
	for _, patternIdx := range matches {
		if patternIdx < 0 || patternIdx >= len(e.ruleIndex) {
			continue
		}
		if idx := e.ruleIndex[patternIdx]; best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return Generic
	}
	return rules[best].tag
}

// Services lists every tag the engine can produce, in precedence order,
// Generic last.
func Services() []Service {
	out := make([]Service, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.tag)
	}
	return append(out, Generic)
}
