package sim

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"latchfw/errcode"
	"latchfw/firmware"
	"latchfw/x/strx"
)

// DefaultSampleCost is the simulated time one pass of the polling loop
// takes when a scenario does not say.
const DefaultSampleCost = 10 * time.Microsecond

// Scenario is a YAML-described stimulus plus the firmware settings to run
// it against.
//
//	name: short-press
//	delay: 60ms
//	steps:
//	  - release 100ms
//	  - press 30ms
//	  - release 200ms
type Scenario struct {
	Name           string   `yaml:"name"`
	Mode           string   `yaml:"mode"`
	Bit            uint8    `yaml:"bit"`
	Delay          string   `yaml:"delay"`       // "" = 60ms, "0s" = none
	NoDelay        bool     `yaml:"no_delay"`    // drop every delay
	SampleCost     string   `yaml:"sample_cost"` // "" = DefaultSampleCost
	InputDirection uint8    `yaml:"input_direction"`
	ReplicateSeed  bool     `yaml:"replicate_seed"`
	Seed           int64    `yaml:"seed"`
	Steps          []string `yaml:"steps"`
}

// ParseScenario decodes one YAML document. Unknown keys are rejected.
func ParseScenario(b []byte) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, errcode.Wrap(errcode.InvalidPayload, "scenario", err)
	}
	return sc, nil
}

// LoadScenario reads a scenario file. A missing name defaults to the
// file's base name.
func LoadScenario(file string) (Scenario, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return Scenario{}, errcode.Wrap(errcode.IOError, "scenario", err)
	}
	sc, err := ParseScenario(b)
	if err != nil {
		return Scenario{}, err
	}
	sc.Name = strx.Coalesce(sc.Name, strings.TrimSuffix(path.Base(file), path.Ext(file)))
	return sc, nil
}

// Signal parses the step lines.
func (sc Scenario) Signal() (Signal, error) { return ParseSignal(sc.Steps) }

// Cost is the simulated time per loop pass.
func (sc Scenario) Cost() (time.Duration, error) {
	if sc.SampleCost == "" {
		return DefaultSampleCost, nil
	}
	d, err := parseDuration(sc.SampleCost)
	if err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "sample_cost", Msg: sc.SampleCost}
	}
	return d, nil
}

// LoopConfig maps the scenario onto a firmware configuration.
func (sc Scenario) LoopConfig() (firmware.Config, error) {
	mode, err := firmware.ParseMode(sc.Mode)
	if err != nil {
		return firmware.Config{}, &errcode.E{C: errcode.InvalidParams, Op: "mode", Msg: sc.Mode}
	}
	if sc.Bit > 7 {
		return firmware.Config{}, &errcode.E{C: errcode.InvalidParams, Op: "bit", Msg: "must be 0..7"}
	}
	delay := firmware.DefaultDelay
	if sc.Delay != "" {
		if delay, err = parseDuration(sc.Delay); err != nil {
			return firmware.Config{}, &errcode.E{C: errcode.InvalidParams, Op: "delay", Msg: sc.Delay}
		}
	}
	return firmware.Config{
		Bit:            sc.Bit,
		Mode:           mode,
		Delay:          delay,
		InputDirection: sc.InputDirection,
		ReplicateSeed:  sc.ReplicateSeed,
		Seed:           sc.Seed,
	}, nil
}

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// BuiltinNames lists the embedded scenarios.
func BuiltinNames() []string {
	ents, _ := fs.ReadDir(builtinFS, "scenarios")
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Builtin returns an embedded scenario by name.
func Builtin(name string) (Scenario, error) {
	b, err := builtinFS.ReadFile("scenarios/" + name + ".yaml")
	if err != nil {
		return Scenario{}, &errcode.E{C: errcode.InvalidParams, Op: "builtin", Msg: name}
	}
	sc, err := ParseScenario(b)
	if err != nil {
		return Scenario{}, err
	}
	sc.Name = strx.Coalesce(sc.Name, name)
	return sc, nil
}
