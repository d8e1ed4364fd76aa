package query

import (
	"regexp"
	"strings"

	fserr "fsintel/internal/errors"
)

// Routed pairs the matched intent name with its query result so callers
// can see how the request was interpreted.
type Routed struct {
	Intent string      `json:"intent"`
	Result interface{} `json:"result"`
}

// extensionToken matches an extension mentioned inline, e.g. ".py".
var extensionToken = regexp.MustCompile(`\.(\w+)`)

// intent is one router rule. Rules are tried in declaration order and
// the first match wins.
type intent struct {
	name    string
	matches func(request string) bool
	run     func(e *Engine, sessionID, request string) (interface{}, error)
}

var intents = []intent{
	{
		name: "largest_files",
		matches: func(r string) bool {
			return strings.Contains(r, "largest") || strings.Contains(r, "biggest") ||
				strings.Contains(r, "large file")
		},
		run: func(e *Engine, sessionID, _ string) (interface{}, error) {
			return e.GetLargestFiles(sessionID, defaultLimit)
		},
	},
	{
		name: "duplicate_files",
		matches: func(r string) bool {
			return strings.Contains(r, "duplicate")
		},
		run: func(e *Engine, sessionID, _ string) (interface{}, error) {
			return e.GetDuplicateFiles(sessionID)
		},
	},
	{
		name: "directory_summary",
		matches: func(r string) bool {
			return strings.Contains(r, "summary") || strings.Contains(r, "overview")
		},
		run: func(e *Engine, sessionID, _ string) (interface{}, error) {
			return e.GetDirectorySummary(sessionID)
		},
	},
	{
		name: "files_by_extension",
		matches: func(r string) bool {
			// An inline ".py" alone is too weak a signal; the request
			// has to ask about extensions.
			return strings.Contains(r, "extension") && extensionToken.MatchString(r)
		},
		run: func(e *Engine, sessionID, request string) (interface{}, error) {
			ext := extensionToken.FindString(request)
			return e.FindFilesByExtension(sessionID, ext)
		},
	},
}

// Natural routes a plain-language request onto the named query catalog.
// Matching is keyword based and case-insensitive; an unmatched request
// returns ROUTER_MISS rather than guessing.
func (e *Engine) Natural(sessionID, request string) (*Routed, error) {
	normalized := strings.ToLower(strings.TrimSpace(request))
	if normalized == "" {
		return nil, fserr.NewInvalidParameterError("request", "must not be empty")
	}
	for _, in := range intents {
		if !in.matches(normalized) {
			continue
		}
		e.logger.Debug("request routed", "intent", in.name)
		result, err := in.run(e, sessionID, normalized)
		if err != nil {
			return nil, err
		}
		return &Routed{Intent: in.name, Result: result}, nil
	}
	return nil, fserr.New(fserr.RouterMiss, "Could not understand the request", nil)
}
