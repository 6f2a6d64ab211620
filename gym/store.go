package gym

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// RosterStore owns the member roster and its JSON file representation. The
// file's top level is an object keyed by member id. Every mutation rewrites
// the file in full before returning; when a write fails the in-memory roster
// keeps the mutation and the error is returned to the caller.
type RosterStore struct {
	path    string
	log     *zap.Logger
	members map[string]*Member
}

// NewRosterStore opens the roster backed by the JSON file at path, creating
// parent directories as needed. A missing file is a first run and yields an
// empty roster. A corrupt or unreadable file also yields an empty roster and
// is logged as a warning; it is never fatal.
func NewRosterStore(path string, log *zap.Logger) (*RosterStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	s := &RosterStore{
		path:    path,
		log:     log,
		members: make(map[string]*Member),
	}
	s.load()
	return s, nil
}

// load reads the backing file into memory. Problems downgrade to a fresh
// start instead of an error.
func (s *RosterStore) load() {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("no roster file, starting fresh", zap.String("path", s.path))
		return
	}
	if err != nil {
		s.log.Warn("roster file unreadable, starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	var records map[string]*Member
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warn("roster file corrupted, starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return
	}

	for _, m := range records {
		if m == nil {
			continue
		}
		s.members[m.ID] = m
	}
	s.log.Info("roster loaded",
		zap.String("path", s.path), zap.Int("members", len(s.members)))
}

// Save writes the entire roster to the backing file, replacing its previous
// contents. The output is indented for hand inspection.
func (s *RosterStore) Save() error {
	data, err := json.MarshalIndent(s.members, "", "    ")
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Error("roster save failed",
			zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Roster operations
// ---------------------------------------------------------------------------

// Create registers a new member under id and persists the roster. It returns
// a DuplicateIDError when the id is already taken.
func (s *RosterStore) Create(id, name string, age int, gender, phone string, weight, height float64, tier MembershipTier) error {
	if _, exists := s.members[id]; exists {
		return &DuplicateIDError{ID: id}
	}

	m := NewMember(id, name, age, gender, phone, weight, height, tier)
	s.members[id] = m
	s.log.Info("member registered",
		zap.String("id", id), zap.String("name", name), zap.String("tier", string(tier)))
	return s.Save()
}

// Get returns the stored member for id. The returned pointer is the live
// record held by the roster, not a copy.
func (s *RosterStore) Get(id string) (*Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, &MemberNotFoundError{ID: id}
	}
	return m, nil
}

// Delete removes the member for id and persists the roster.
func (s *RosterStore) Delete(id string) error {
	if _, ok := s.members[id]; !ok {
		return &MemberNotFoundError{ID: id}
	}
	delete(s.members, id)
	s.log.Info("member removed", zap.String("id", id))
	return s.Save()
}

// LogAttendance records a check-in for id, persists the roster, and returns
// the member's name for the greeting.
func (s *RosterStore) LogAttendance(id string) (string, error) {
	m, ok := s.members[id]
	if !ok {
		return "", &MemberNotFoundError{ID: id}
	}
	m.MarkAttendance()
	if err := s.Save(); err != nil {
		return "", err
	}
	return m.Name, nil
}

// Members returns every member sorted by id for listing. Callers must treat
// the returned records as read-only.
func (s *RosterStore) Members() []*Member {
	out := make([]*Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetAnalytics reports roster totals: member count, average BMI rounded to
// two decimals, and a per-tier headcount. Members carrying an unknown tier
// from an old data file count toward the total but no tier bucket. An empty
// roster yields zero values with no tier breakdown.
func (s *RosterStore) GetAnalytics() Analytics {
	total := len(s.members)
	if total == 0 {
		return Analytics{}
	}

	var sum float64
	tiers := make(map[MembershipTier]int, len(Tiers))
	for _, t := range Tiers {
		tiers[t] = 0
	}
	for _, m := range s.members {
		sum += m.BMI
		if _, known := tiers[m.Tier]; known {
			tiers[m.Tier]++
		}
	}

	return Analytics{
		Total:  total,
		AvgBMI: math.Round(sum/float64(total)*100) / 100,
		Tiers:  tiers,
	}
}
