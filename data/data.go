// Package data owns the JSON files the bot serves static content from. Files are
// created with defaults on first start and read once into an immutable Store.
package data

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	SubscribersFile = "subscribers.json"
	FactsFile       = "facts.json"
	QuotesFile      = "quotes.json"
	RegionsFile     = "kode_wilayah.json"
)

// DefaultQuotes seed quotes.json the first time the bot starts.
var DefaultQuotes = []string{
	"Get excited! This is the power of science! — Senku Ishigami",
	"Nothing is impossible with science! — Senku",
	"Science is just a name for the pursuit of knowledge! — Senku",
	"If you don't give up, you can't fail! — Chrome",
}

// Region maps a place name to the BMKG adm4 code used for forecasts.
type Region struct {
	Code     string `json:"kode"`
	Name     string `json:"nama"`
	Village  string `json:"kelurahan"`
	Province string `json:"provinsi"`
}

// DisplayName is the village name when known, otherwise the region name.
func (r Region) DisplayName() string {
	if r.Village != "" {
		return r.Village
	}
	return r.Name
}

// Bootstrap creates dir and any missing default files in it. Existing files are
// left untouched.
func Bootstrap(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "error creating data dir %s", dir)
	}

	defaults := []struct {
		name  string
		value any
	}{
		{SubscribersFile, []string{}},
		{FactsFile, []string{}},
		{QuotesFile, DefaultQuotes},
	}
	for _, d := range defaults {
		path := filepath.Join(dir, d.name)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "error checking %s", path)
		}
		if err := writeJSON(path, d.value); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "error encoding %s", path)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "error writing %s", path)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "error reading %s", path)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return errors.Wrapf(err, "error decoding %s", path)
	}
	return nil
}

// Store is a read-only snapshot of the data files.
type Store struct {
	quotes  []string
	facts   []string
	regions []Region
}

// NewStore builds a Store from in-memory values.
func NewStore(quotes, facts []string, regions []Region) *Store {
	return &Store{quotes: quotes, facts: facts, regions: regions}
}

// Load reads quotes, facts and the region table from dir. A missing region table
// yields an empty one; quotes and facts must exist (see Bootstrap).
func Load(dir string) (*Store, error) {
	s := &Store{}
	if err := readJSON(filepath.Join(dir, QuotesFile), &s.quotes); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, FactsFile), &s.facts); err != nil {
		return nil, err
	}

	regionPath := filepath.Join(dir, RegionsFile)
	if _, err := os.Stat(regionPath); err == nil {
		if err := readJSON(regionPath, &s.regions); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "error checking %s", regionPath)
	}
	return s, nil
}

// Counts reports how many quotes, facts and regions were loaded.
func (s *Store) Counts() (quotes, facts, regions int) {
	return len(s.quotes), len(s.facts), len(s.regions)
}

// RandomQuote returns a random quote, or false when there are none.
func (s *Store) RandomQuote() (string, bool) {
	return pick(s.quotes)
}

// RandomFact returns a random fact, or false when there are none.
func (s *Store) RandomFact() (string, bool) {
	return pick(s.facts)
}

func pick(items []string) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	return items[rand.IntN(len(items))], true
}

// FindRegion returns the first region whose name contains city, ignoring case.
func (s *Store) FindRegion(city string) (Region, bool) {
	needle := strings.ToLower(strings.TrimSpace(city))
	if needle == "" {
		return Region{}, false
	}
	for _, r := range s.regions {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			return r, true
		}
	}
	return Region{}, false
}
