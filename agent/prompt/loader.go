package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/flight.txt
	flightRaw string

	//go:embed template/cab.txt
	cabRaw string
)

// PromptSet holds the role templates for the task agents.
type PromptSet struct {
	Flight string
	Cab    string
}

// LoadPromptSet returns trimmed prompt strings. Safe to call concurrently;
// the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Flight: strings.TrimSpace(flightRaw),
		Cab:    strings.TrimSpace(cabRaw),
	}
}
