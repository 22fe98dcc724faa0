package fta

import "github.com/faultgraph/engine/model"

// Input is the §6 ingestion contract's concrete payload: the named gates,
// basic events, house events, and CCF groups of one analysis, plus the id of
// the top gate. Keys are normalized (lower-cased, trimmed) ids; callers
// (today, package config; eventually an XML loader) are responsible for
// building this from their own source format.
type Input struct {
	TopGate     string
	Gates       map[string]*model.Gate
	BasicEvents map[string]*model.BasicEvent
	HouseEvents map[string]*model.HouseEvent
	CcfGroups   map[string]*model.CcfGroup
}

// NewInput returns an Input with its maps initialized, ready for callers to
// populate via Gates[...]=, BasicEvents[...]=, etc.
func NewInput(topGate string) Input {
	return Input{
		TopGate:     topGate,
		Gates:       make(map[string]*model.Gate),
		BasicEvents: make(map[string]*model.BasicEvent),
		HouseEvents: make(map[string]*model.HouseEvent),
		CcfGroups:   make(map[string]*model.CcfGroup),
	}
}
