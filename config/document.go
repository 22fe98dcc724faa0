// Package config loads a fault tree definition and its analysis settings
// from a single YAML document, the way package main in the pack's simpler
// tools loads a settings.yaml relative to a root path. Unlike that
// lower-stakes permissions file, a fault tree document also has to become
// fta.Input -- so this package's job is translation as much as parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/faultgraph/engine/fta"
	"github.com/faultgraph/engine/model"
)

// Document is the on-disk shape of a fault tree definition file: the top
// gate's id, every named gate's formula, every basic/house event, and every
// CCF group, plus the analysis settings that normally travel alongside it.
// Fields mirror §6's <config>/<limits>/<approximations>/<analysis> elements
// distilled down to one flat YAML shape.
type Document struct {
	TopGate  string         `yaml:"top_gate"`
	Gates    []GateDoc      `yaml:"gates"`
	Events   []BasicEventDoc `yaml:"basic_events"`
	Houses   []HouseEventDoc `yaml:"house_events"`
	CCF      []CcfGroupDoc   `yaml:"ccf_groups"`
	Settings model.Settings  `yaml:"settings"`
}

// GateDoc is one named gate: its Boolean kind, vote number (ATLEAST only),
// and the names of its children. NOT and NULL take exactly one child;
// events wrapped in a leading '~' are treated as negated literals, so a
// two-child OR/AND with one negated argument can express the same shape
// §4.2 collapses a NOT-over-literal formula into.
type GateDoc struct {
	ID       string   `yaml:"id"`
	Kind     string   `yaml:"kind"`
	Vote     int      `yaml:"vote,omitempty"`
	Children []string `yaml:"children"`
}

// BasicEventDoc is one leaf probability, with an optional uncertainty
// distribution. When Distribution is nil the event is constant.
type BasicEventDoc struct {
	ID           string              `yaml:"id"`
	Probability  float64             `yaml:"probability"`
	Distribution *model.Distribution `yaml:"distribution,omitempty"`
}

// HouseEventDoc is one Boolean constant.
type HouseEventDoc struct {
	ID    string `yaml:"id"`
	State bool   `yaml:"state"`
}

// CcfGroupDoc is one common-cause-failure group: its combination model and
// the members/factors NewCcfGroup validates.
type CcfGroupDoc struct {
	ID      string    `yaml:"id"`
	Model   string    `yaml:"model"`
	Members []string  `yaml:"members"`
	Factors []float64 `yaml:"factors"`
}

func parseGateKind(s string) (model.GateKind, error) {
	switch s {
	case "and":
		return model.AND, nil
	case "or":
		return model.OR, nil
	case "xor":
		return model.XOR, nil
	case "not":
		return model.NOT, nil
	case "nand":
		return model.NAND, nil
	case "nor":
		return model.NOR, nil
	case "null":
		return model.NULL, nil
	case "atleast":
		return model.ATLEAST, nil
	default:
		return 0, fmt.Errorf("unknown gate kind %q", s)
	}
}

func parseCcfModel(s string) (model.CcfModel, error) {
	switch s {
	case "", "beta", "beta-factor":
		return model.CcfBeta, nil
	case "mgl":
		return model.CcfMGL, nil
	case "alpha", "alpha-factor":
		return model.CcfAlpha, nil
	default:
		return 0, fmt.Errorf("unknown ccf model %q", s)
	}
}

// childArg resolves one gate-children entry into a FormulaArg, honoring a
// leading '~' as a NOT-wrapped reference and a trailing "()" convention-free
// bare name as a gate, house, or basic event reference -- resolved by
// toInput once every named gate/house event is known.
func childArg(name string, gateIDs, houseIDs map[string]bool) model.FormulaArg {
	negate := false
	if len(name) > 0 && name[0] == '~' {
		negate = true
		name = name[1:]
	}
	var arg model.FormulaArg
	switch {
	case gateIDs[normalizeKey(name)]:
		arg = model.GateRef(name)
	case houseIDs[normalizeKey(name)]:
		arg = model.House(name)
	default:
		arg = model.Event(name)
	}
	if negate {
		notArg, err := model.NewFormula(model.NOT, 0, arg)
		if err != nil {
			// childArg's only failure mode is NOT's arity check, which a
			// single-argument call can never trip; construction here never
			// returns an error but we still feed it through NewFormula so a
			// future arity change fails loudly rather than silently.
			return arg
		}
		return model.Nested(notArg)
	}
	return arg
}

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ToInput translates a parsed Document into an fta.Input, validating every
// gate formula and basic/house event along the way.
func (d *Document) ToInput() (fta.Input, error) {
	in := fta.NewInput(d.TopGate)

	gateIDs := make(map[string]bool, len(d.Gates))
	for _, g := range d.Gates {
		gateIDs[normalizeKey(g.ID)] = true
	}
	houseIDs := make(map[string]bool, len(d.Houses))
	for _, h := range d.Houses {
		houseIDs[normalizeKey(h.ID)] = true
	}

	for _, be := range d.Events {
		event, err := model.NewBasicEvent(be.ID, be.Probability, be.Distribution)
		if err != nil {
			return fta.Input{}, fmt.Errorf("basic event %q: %w", be.ID, err)
		}
		in.BasicEvents[event.ID] = event
	}
	for _, he := range d.Houses {
		event, err := model.NewHouseEvent(he.ID, he.State)
		if err != nil {
			return fta.Input{}, fmt.Errorf("house event %q: %w", he.ID, err)
		}
		in.HouseEvents[event.ID] = event
	}
	for _, gd := range d.Gates {
		kind, err := parseGateKind(gd.Kind)
		if err != nil {
			return fta.Input{}, fmt.Errorf("gate %q: %w", gd.ID, err)
		}
		args := make([]model.FormulaArg, 0, len(gd.Children))
		for _, c := range gd.Children {
			args = append(args, childArg(c, gateIDs, houseIDs))
		}
		formula, err := model.NewFormula(kind, gd.Vote, args...)
		if err != nil {
			return fta.Input{}, fmt.Errorf("gate %q: %w", gd.ID, err)
		}
		gate, err := model.NewGate(gd.ID, formula)
		if err != nil {
			return fta.Input{}, fmt.Errorf("gate %q: %w", gd.ID, err)
		}
		in.Gates[gate.ID] = gate
	}
	for _, cd := range d.CCF {
		ccfModel, err := parseCcfModel(cd.Model)
		if err != nil {
			return fta.Input{}, fmt.Errorf("ccf group %q: %w", cd.ID, err)
		}
		group, err := model.NewCcfGroup(cd.ID, ccfModel, cd.Members, cd.Factors)
		if err != nil {
			return fta.Input{}, fmt.Errorf("ccf group %q: %w", cd.ID, err)
		}
		in.CcfGroups[group.ID] = group
	}

	if !gateIDs[normalizeKey(d.TopGate)] {
		return fta.Input{}, fmt.Errorf("top_gate %q does not name a gate in this document", d.TopGate)
	}
	return in, nil
}

// Load reads and parses a fault tree document from path, returning both the
// translated fta.Input and the normalized model.Settings (its ApproxName
// resolved into Approx) ready to pass to fta.Run.
func Load(path string) (fta.Input, model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fta.Input{}, model.Settings{}, fta.Wrap(fta.KindIO, path, err)
	}

	settings := model.DefaultSettings()
	doc := Document{Settings: settings}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fta.Input{}, model.Settings{}, fta.Wrap(fta.KindValidation, path, fmt.Errorf("parse yaml: %w", err))
	}

	if err := doc.Settings.Normalize(); err != nil {
		return fta.Input{}, model.Settings{}, fta.Wrap(fta.KindValidation, path, err)
	}

	in, err := doc.ToInput()
	if err != nil {
		return fta.Input{}, model.Settings{}, fta.Wrap(fta.KindValidation, path, err)
	}
	return in, doc.Settings, nil
}
