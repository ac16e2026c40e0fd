package config

import (
	"sort"

	"github.com/starsweep/galpop/internal/evolve"
)

var Presets = map[string]*Config{
	"fiducial": {
		NBinaries: 10000, Processes: 8, M1Cutoff: 7, VDispersion: 5,
		MaxEvTime: 12000, TimestepSize: 1, Potential: "milkyway",
		Filters: []string{"J", "H", "K", "G", "BP", "RP"},
		Evolve:  evolve.DefaultSettings(),
	},
	"small": {
		NBinaries: 500, Processes: 4, M1Cutoff: 7, VDispersion: 5,
		MaxEvTime: 12000, TimestepSize: 1, Potential: "milkyway",
		Filters: []string{"G", "BP", "RP"},
		Evolve:  evolve.DefaultSettings(),
	},
	"kicks-heavy": {
		NBinaries: 2000, Processes: 8, M1Cutoff: 10, VDispersion: 5,
		MaxEvTime: 12000, TimestepSize: 0.5, Potential: "milkyway",
		Filters: []string{"G", "BP", "RP"},
		Evolve: evolve.Settings{
			KickSigma: 400, BinFrac: 0.7, ZSun: 0.014, Seed: 1,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
