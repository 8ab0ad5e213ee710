// Package prompts holds the advisor's system prompt and the option
// enumerations that tool arguments are validated against.
package prompts

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Options enumerates the valid sport, CCA, and culture-trait names. These
// mirror the database's vocabulary; a preference outside these lists will
// never match a school.
type Options struct {
	Sports  []string `yaml:"sports" json:"sports"`
	CCAs    []string `yaml:"ccas" json:"ccas"`
	Culture []string `yaml:"culture" json:"culture"`
}

// DefaultOptions returns the built-in enumerations.
func DefaultOptions() Options {
	return Options{
		Sports: []string{
			"Badminton", "Basketball", "Bowling", "Canoeing", "Cricket",
			"Cross Country", "Floorball", "Football", "Golf", "Gymnastics",
			"Hockey", "Netball", "Rugby", "Sailing", "SepakTakraw",
			"Shooting", "Softball", "Squash", "Swimming", "Table Tennis",
			"Taekwondo", "Tennis", "Track and Field", "Volleyball",
			"Water Polo", "Wushu",
		},
		CCAs: []string{
			"Astronomy", "Chemistry Olympiad", "Math Olympiad", "Robotics",
			"National STEM",
		},
		Culture: []string{
			"Service/Care", "Integrity/Moral Courage", "Excellence",
			"Compassion/Empathy", "Leadership", "Faith-based Character",
			"People-centred Respect", "Passion & Lifelong Learning",
			"Responsibility/Accountability", "Courage / Tenacity",
			"Diversity & Inclusiveness", "Innovation / Pioneering",
			"Accountability / Stewardship", "Holistic Development",
			"Scholarship & Leadership Excellence",
		},
	}
}

// LoadOptions reads an options file in YAML form, for deployments whose
// database vocabulary has drifted from the defaults. An empty path returns
// the defaults. Missing sections fall back to the defaults per section.
func LoadOptions(path string) (Options, error) {
	defaults := DefaultOptions()
	if path == "" {
		return defaults, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	var loaded Options
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Options{}, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	if len(loaded.Sports) == 0 {
		loaded.Sports = defaults.Sports
	}
	if len(loaded.CCAs) == 0 {
		loaded.CCAs = defaults.CCAs
	}
	if len(loaded.Culture) == 0 {
		loaded.Culture = defaults.Culture
	}
	return loaded, nil
}

// HasSport reports whether name is a known sport.
func (o Options) HasSport(name string) bool { return slices.Contains(o.Sports, name) }

// HasCCA reports whether name is a known CCA.
func (o Options) HasCCA(name string) bool { return slices.Contains(o.CCAs, name) }

// HasCulture reports whether name is a known culture trait.
func (o Options) HasCulture(name string) bool { return slices.Contains(o.Culture, name) }
