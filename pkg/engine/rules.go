package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/gosec-autofix/pkg/logging"
)

// RuleFile is a custom pattern group loaded from YAML.
type RuleFile struct {
	Concern  Concern    `yaml:"concern"`
	Group    string     `yaml:"group"`
	Patterns []RuleSpec `yaml:"patterns"`
}

// RuleSpec is one pattern entry inside a RuleFile.
type RuleSpec struct {
	Regex    string `yaml:"regex"`
	Severity string `yaml:"severity"`
	Label    string `yaml:"label"`
}

// LoadRules reads every *.yaml / *.yml file in dir and returns base extended
// with their patterns. Files are applied in name order. Regexes are not
// validated here; a pattern that does not compile is skipped at scan time.
func LoadRules(base *Catalog, dir string) (*Catalog, error) {
	if base == nil {
		base = DefaultCatalog()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rules dir %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	cat := base
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		var rf RuleFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		patterns, err := rf.compile()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		rf.Group, _ = groupName(rf.Concern, rf.Group)
		cat = cat.Extend(rf.Concern, rf.Group, patterns...)
		logging.Debugf("Loaded rule group %s/%s (%d patterns) from %s", rf.Concern, rf.Group, len(patterns), entry.Name())
	}
	return cat, nil
}

func (rf RuleFile) compile() ([]*Pattern, error) {
	known := false
	for _, c := range Concerns {
		if rf.Concern == c {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown concern %q", rf.Concern)
	}
	if strings.TrimSpace(rf.Group) == "" {
		return nil, fmt.Errorf("group name is required")
	}
	if _, ok := groupName(rf.Concern, rf.Group); !ok {
		return nil, fmt.Errorf("%s group %q does not name a scannable language", rf.Concern, rf.Group)
	}

	out := make([]*Pattern, 0, len(rf.Patterns))
	for i, spec := range rf.Patterns {
		sev := Severity(strings.ToUpper(strings.TrimSpace(spec.Severity)))
		if !sev.Valid() {
			return nil, fmt.Errorf("pattern %d: unknown severity %q", i, spec.Severity)
		}
		if spec.Regex == "" {
			return nil, fmt.Errorf("pattern %d: regex is required", i)
		}
		out = append(out, NewPattern(spec.Regex, sev, spec.Label))
	}
	return out, nil
}
