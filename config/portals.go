package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PortalConfig describes one monitored procurement portal. The core treats it
// as an immutable value for the duration of a cycle.
type PortalConfig struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Region   string `yaml:"region"`
	Criteria string `yaml:"criteria"`
	Enabled  *bool  `yaml:"enabled"`

	// Adapter selects the extraction variant: a known fixed adapter key, or
	// "generic" for the heuristic adapter. Defaults to "generic".
	Adapter string `yaml:"adapter"`

	// FallbackDeadlineDays is added to the extraction time when no deadline can
	// be parsed from the source. Zero means the adapter's own default.
	FallbackDeadlineDays int `yaml:"fallback_deadline_days"`

	// Selectors optionally pins individual heuristics of the generic adapter.
	Selectors SelectorOverrides `yaml:"selectors"`
}

// SelectorOverrides bypasses auto-discovery for the named field when set.
type SelectorOverrides struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	LoginButton string `yaml:"login_button"`
	TenderList  string `yaml:"tender_list"`
}

// IsEnabled defaults to true when the flag is absent.
func (p PortalConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

type portalsFile struct {
	GlobalKeywords string         `yaml:"global_keywords"`
	Portals        []PortalConfig `yaml:"portals"`
}

// LoadPortals reads the portal definitions once and applies the global keyword
// overlay to each portal's criteria. Callers pass the result into a cycle and
// never re-read it mid-cycle.
func LoadPortals(path string) ([]PortalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portals file %q: %w", path, err)
	}

	var f portalsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse portals file %q: %w", path, err)
	}

	out := make([]PortalConfig, 0, len(f.Portals))
	for i, p := range f.Portals {
		if strings.TrimSpace(p.URL) == "" {
			return nil, fmt.Errorf("portal %d (%q): missing url", i, p.Name)
		}
		if strings.TrimSpace(p.Name) == "" {
			p.Name = p.URL
		}
		if strings.TrimSpace(p.Key) == "" {
			p.Key = strings.ToLower(strings.ReplaceAll(p.Name, " ", "_"))
		}
		if strings.TrimSpace(p.Adapter) == "" {
			p.Adapter = "generic"
		}
		p.Criteria = mergeCriteria(p.Criteria, f.GlobalKeywords)
		out = append(out, p)
	}

	return out, nil
}

func mergeCriteria(criteria, global string) string {
	criteria = strings.TrimSpace(criteria)
	global = strings.TrimSpace(global)
	switch {
	case global == "":
		return criteria
	case criteria == "":
		return global
	default:
		return criteria + ", " + global
	}
}
