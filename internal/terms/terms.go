// Package terms holds the data-driven phrase sets used by the planner,
// insight extractor, and safety checker. Lists live in a YAML file so they
// can be tuned or localized without code changes; compiled-in defaults apply
// when no file is configured.
package terms

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Lists is one immutable snapshot of every term set. Reloading swaps the
// whole snapshot; callers must not mutate a returned snapshot.
type Lists struct {
	// Intents maps intent names (advice, analysis, comparison, summary) to
	// their trigger phrases. Search has no phrase set; it is the default.
	Intents map[string][]string `yaml:"intents"`
	// DomainKeywords maps domain tags to the keywords that select them.
	DomainKeywords map[string][]string `yaml:"domain_keywords"`
	// StopWords are dropped during keyword extraction.
	StopWords []string `yaml:"stop_words"`
	// Insights maps insight kinds (pattern, trend, opportunity) to the
	// phrases that trigger them.
	Insights map[string][]string `yaml:"insights"`
	// Safety maps warning kinds (medical, financial, legal, emergency) to
	// their term sets. The four sets are disjoint.
	Safety map[string][]string `yaml:"safety"`
}

// Provider serves the current Lists snapshot and supports hot reload.
type Provider struct {
	mu      sync.RWMutex
	current *Lists
	path    string
}

// NewProvider creates a provider. When path is empty or the file does not
// exist, compiled-in defaults are used. A present but malformed file is an
// error; silently running with defaults would mask a bad deployment.
func NewProvider(path string) (*Provider, error) {
	p := &Provider{path: path, current: Defaults()}
	if path == "" {
		return p, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return p, nil
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Current returns the active snapshot.
func (p *Provider) Current() *Lists {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Reload re-reads the file and swaps the snapshot. Missing sections fall
// back to their defaults so a partial file stays usable.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read terms file: %w", err)
	}
	var loaded Lists
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse terms file: %w", err)
	}
	merged := Defaults()
	if len(loaded.Intents) > 0 {
		merged.Intents = loaded.Intents
	}
	if len(loaded.DomainKeywords) > 0 {
		merged.DomainKeywords = loaded.DomainKeywords
	}
	if len(loaded.StopWords) > 0 {
		merged.StopWords = loaded.StopWords
	}
	if len(loaded.Insights) > 0 {
		merged.Insights = loaded.Insights
	}
	if len(loaded.Safety) > 0 {
		merged.Safety = loaded.Safety
	}
	p.mu.Lock()
	p.current = merged
	p.mu.Unlock()
	return nil
}

// Path returns the configured terms file path (empty when using defaults only).
func (p *Provider) Path() string {
	return p.path
}
