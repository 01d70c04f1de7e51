package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/innovatorlabs/itype/internal/quiz"
)

// Store loads quiz content (questions, scenarios, archetypes) from a data
// directory. Files may be JSON or YAML; when neither exists for a content
// kind the embedded defaults are used. Content is loaded once at startup
// and treated as read-only afterwards.
type Store struct {
	dataDir string
}

// NewStore creates a content store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// LoadQuestions loads the questionnaire definition.
func (s *Store) LoadQuestions() ([]quiz.Question, error) {
	var questions []quiz.Question
	if err := s.load("questions", &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question set is empty")
	}
	for i, q := range questions {
		if q.Dimension == "" {
			return nil, fmt.Errorf("question %d (%q): missing dimension", i, q.ID)
		}
	}
	return questions, nil
}

// LoadScenarios loads the optional scenario items. A missing file (with no
// embedded fallback consumed) is not an error; scenarios are optional.
func (s *Store) LoadScenarios() ([]quiz.Scenario, error) {
	var scenarios []quiz.Scenario
	if err := s.load("scenarios", &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// LoadArchetypes loads and validates the archetype definitions. Archetype
// files are ordered arrays so that matching tie-breaks stay reproducible.
// Invalid entries are dropped with a warning; the returned warnings slice
// carries one message per dropped or repaired entry. Zero surviving
// archetypes is an error only when strict is set, since the matcher has a
// defined sentinel for that case.
func (s *Store) LoadArchetypes(strict bool) (*quiz.ArchetypeSet, []string, error) {
	var archetypes []quiz.Archetype
	if err := s.load("archetypes", &archetypes); err != nil {
		return nil, nil, err
	}

	var warnings []string
	kept := make([]quiz.Archetype, 0, len(archetypes))
	for _, a := range archetypes {
		if warning, ok := validateArchetype(&a); !ok {
			warnings = append(warnings, warning)
			continue
		} else if warning != "" {
			warnings = append(warnings, warning)
		}
		kept = append(kept, a)
	}

	for _, w := range warnings {
		slog.Warn("archetype configuration issue", "issue", w)
	}

	set := quiz.NewArchetypeSet(kept)
	if strict && set.Len() == 0 {
		return nil, warnings, fmt.Errorf("no valid archetypes in configuration")
	}
	return set, warnings, nil
}

// validateArchetype checks one configured archetype. It returns ok=false
// with a warning when the entry must be dropped, and a non-empty warning
// with ok=true when the signature needed clamping into 0..100.
func validateArchetype(a *quiz.Archetype) (string, bool) {
	if a.Name == "" {
		return "archetype with empty name dropped", false
	}
	if len(a.Signature) == 0 {
		return fmt.Sprintf("archetype %q: missing signature, dropped", a.Name), false
	}
	clamped := false
	for dim, v := range a.Signature {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Sprintf("archetype %q: non-finite signature value for %q, dropped", a.Name, dim), false
		}
		if v < 0 || v > 100 {
			a.Signature[dim] = math.Min(math.Max(v, 0), 100)
			clamped = true
		}
	}
	if clamped {
		return fmt.Sprintf("archetype %q: signature values clamped to 0..100", a.Name), true
	}
	return "", true
}

// load reads <name>.json or <name>.yaml from the data directory, falling
// back to the embedded default for the content kind.
func (s *Store) load(name string, out interface{}) error {
	jsonPath := filepath.Join(s.dataDir, name+".json")
	if _, err := os.Stat(jsonPath); err == nil {
		return decodeJSONFile(jsonPath, out)
	}
	for _, ext := range []string{".yaml", ".yml"} {
		yamlPath := filepath.Join(s.dataDir, name+ext)
		if _, err := os.Stat(yamlPath); err == nil {
			return decodeYAMLFile(yamlPath, out)
		}
	}

	slog.Info("quiz content file not found, using embedded defaults", "kind", name, "dir", s.dataDir)
	data, err := defaultContent(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode embedded %s: %w", name, err)
	}
	return nil
}

func decodeJSONFile(path string, out interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func decodeYAMLFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
