// Package headers builds request headers that impersonate a desktop browser.
package headers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"time"
)

// Header generation errors.
var (
	ErrUnknownBrowser = errors.New("unknown browser")
	ErrUnknownOS      = errors.New("unknown operating system")
)

var platforms = map[string][]string{
	"win": {
		"Windows NT 10.0; Win64; x64",
		"Windows NT 6.3; Win64; x64",
		"Windows NT 6.1; Win64; x64",
	},
	"mac": {
		"Macintosh; Intel Mac OS X 10_15_7",
		"Macintosh; Intel Mac OS X 10_14_6",
		"Macintosh; Intel Mac OS X 13_5_2",
	},
	"lin": {
		"X11; Linux x86_64",
		"X11; Ubuntu; Linux x86_64",
		"X11; Fedora; Linux x86_64",
	},
}

var osAliases = map[string]string{
	"windows": "win",
	"macos":   "mac",
	"osx":     "mac",
	"linux":   "lin",
}

var acceptLanguages = []string{
	"ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
	"en-US,en;q=0.9",
	"ru,en;q=0.9",
}

type browserFunc func(r *rand.Rand, platform string) string

var browsers = map[string]browserFunc{
	"chrome": func(r *rand.Rand, platform string) string {
		return chromeAgent(r, platform)
	},
	"firefox": func(r *rand.Rand, platform string) string {
		v := 115 + r.IntN(20)
		return fmt.Sprintf("Mozilla/5.0 (%s; rv:%d.0) Gecko/20100101 Firefox/%d.0", platform, v, v)
	},
	"opera": func(r *rand.Rand, platform string) string {
		return fmt.Sprintf("%s OPR/%d.0.%d.%d", chromeAgent(r, platform), 100+r.IntN(20), 4000+r.IntN(999), r.IntN(300))
	},
	"edge": func(r *rand.Rand, platform string) string {
		return fmt.Sprintf("%s Edg/%d.0.%d.%d", chromeAgent(r, platform), 115+r.IntN(20), 1800+r.IntN(999), r.IntN(200))
	},
}

func chromeAgent(r *rand.Rand, platform string) string {
	return fmt.Sprintf(
		"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.%d Safari/537.36",
		platform, 115+r.IntN(20), 5700+r.IntN(999), r.IntN(200),
	)
}

// Generator produces browser-like header sets. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator creates a generator seeded from the clock.
func NewGenerator() *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewGeneratorWithSeed(seed)
}

// NewGeneratorWithSeed creates a generator with deterministic output.
func NewGeneratorWithSeed(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns headers impersonating the given browser running on os.
func (g *Generator) Generate(browser, os string) (http.Header, error) {
	agentFn, ok := browsers[strings.ToLower(browser)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrowser, browser)
	}

	key := strings.ToLower(os)
	if alias, ok := osAliases[key]; ok {
		key = alias
	}

	variants, ok := platforms[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOS, os)
	}

	platform := variants[g.rnd.IntN(len(variants))]

	h := http.Header{}
	h.Set("User-Agent", agentFn(g.rnd, platform))
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", acceptLanguages[g.rnd.IntN(len(acceptLanguages))])
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")

	return h, nil
}

// Browsers lists the supported browser names.
func Browsers() []string {
	names := make([]string, 0, len(browsers))
	for name := range browsers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// OperatingSystems lists the supported OS names, aliases excluded.
func OperatingSystems() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
