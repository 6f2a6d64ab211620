package gym

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func tempStore(t *testing.T) *RosterStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewRosterStore(filepath.Join(dir, "gym_data.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func addMember(t *testing.T, s *RosterStore, id, name string, weight, height float64, tier MembershipTier) {
	t.Helper()
	if err := s.Create(id, name, 30, "F", "555-0100", weight, height, tier); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
}

func TestCreateAndGet(t *testing.T) {
	s := tempStore(t)
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)

	m, err := s.Get("M1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Name != "Ann" || m.BMI != 23.44 || m.Tier != TierBasic {
		t.Fatalf("unexpected member: %+v", m)
	}
}

func TestCreateDuplicateID(t *testing.T) {
	s := tempStore(t)
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)

	err := s.Create("M1", "Impostor", 40, "M", "555-0199", 90, 1.8, TierVIP)
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("want DuplicateIDError, got %v", err)
	}
	if dup.ID != "M1" {
		t.Fatalf("want id M1 in error, got %q", dup.ID)
	}

	m, _ := s.Get("M1")
	if m.Name != "Ann" {
		t.Fatalf("duplicate create overwrote record: %+v", m)
	}
}

func TestGetMissing(t *testing.T) {
	s := tempStore(t)

	_, err := s.Get("ghost")
	var notFound *MemberNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want MemberNotFoundError, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)

	if err := s.Delete("M1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get("M1"); err == nil {
		t.Fatalf("member still present after delete")
	}

	var notFound *MemberNotFoundError
	if err := s.Delete("M1"); !errors.As(err, &notFound) {
		t.Fatalf("want MemberNotFoundError, got %v", err)
	}
}

func TestLogAttendance(t *testing.T) {
	s := tempStore(t)
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)

	name, err := s.LogAttendance("M1")
	if err != nil {
		t.Fatalf("log attendance: %v", err)
	}
	if name != "Ann" {
		t.Fatalf("want name Ann, got %q", name)
	}

	m, _ := s.Get("M1")
	if len(m.AttendanceLog) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(m.AttendanceLog))
	}

	var notFound *MemberNotFoundError
	if _, err := s.LogAttendance("ghost"); !errors.As(err, &notFound) {
		t.Fatalf("want MemberNotFoundError, got %v", err)
	}
}

func TestGetReturnsLiveRecord(t *testing.T) {
	s := tempStore(t)
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)

	before, _ := s.Get("M1")
	if _, err := s.LogAttendance("M1"); err != nil {
		t.Fatalf("log attendance: %v", err)
	}
	if len(before.AttendanceLog) != 1 {
		t.Fatalf("expected shared record to see the check-in")
	}
}

func TestMembersSorted(t *testing.T) {
	s := tempStore(t)
	addMember(t, s, "M3", "Cy", 60, 1.6, TierBasic)
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)
	addMember(t, s, "M2", "Bo", 60, 1.6, TierBasic)

	var ids []string
	for _, m := range s.Members() {
		ids = append(ids, m.ID)
	}
	want := []string{"M1", "M2", "M3"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("want %v, got %v", want, ids)
	}
}

// TestPersistenceRoundTrip covers the full save and reload cycle, including
// the on-disk file shape.
func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gym_data.json")

	// Step 1: populate a store; every mutation persists on its own
	s1, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	addMember(t, s1, "M1", "Ann", 60, 1.6, TierBasic)
	addMember(t, s1, "M2", "Bo", 76.8, 1.6, TierVIP)
	if _, err := s1.LogAttendance("M2"); err != nil {
		t.Fatalf("log attendance: %v", err)
	}

	// Step 2: a fresh store on the same path sees identical data
	s2, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	got := s2.Members()
	if len(got) != 2 {
		t.Fatalf("want 2 members after reload, got %d", len(got))
	}
	if got[0].ID != "M1" || got[1].ID != "M2" {
		t.Fatalf("members out of order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].BMI != 23.44 || got[1].BMI != 30.0 {
		t.Fatalf("bmi wrong after reload: %v, %v", got[0].BMI, got[1].BMI)
	}
	if len(got[1].AttendanceLog) != 1 {
		t.Fatalf("attendance log lost in round trip")
	}

	// Step 3: the file is an indented object keyed by member id
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var onDisk map[string]json.RawMessage
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("file not a JSON object: %v", err)
	}
	if _, ok := onDisk["M1"]; !ok || len(onDisk) != 2 {
		t.Fatalf("file not keyed by member id: %v", string(raw))
	}
	if !strings.Contains(string(raw), "\n    \"") {
		t.Fatalf("file should be indented for hand inspection")
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t)
	if n := len(s.Members()); n != 0 {
		t.Fatalf("want empty roster on first run, got %d members", n)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gym_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("corrupt file should not be fatal: %v", err)
	}
	if n := len(s.Members()); n != 0 {
		t.Fatalf("want empty roster, got %d members", n)
	}

	// The store still works and the next save replaces the bad file
	addMember(t, s, "M1", "Ann", 60, 1.6, TierBasic)
	s2, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if n := len(s2.Members()); n != 1 {
		t.Fatalf("want 1 member after recovery, got %d", n)
	}
}

func TestLoadSkipsNullEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gym_data.json")
	doc := `{"M1": null, "M2": {"id": "M2", "name": "Bo", "age": 20, "gender": "M", "phone": "555-0102", "weight": 60, "height": 1.6, "tier": "Basic"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if n := len(s.Members()); n != 1 {
		t.Fatalf("want 1 member, got %d", n)
	}
}

func TestStaleBMIRecomputedOnLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gym_data.json")
	doc := `{
    "M1": {
        "id": "M1",
        "name": "Ann",
        "age": 30,
        "gender": "F",
        "phone": "555-0100",
        "weight": 60,
        "height": 1.6,
        "bmi": 99.9,
        "tier": "Basic",
        "join_date": "2023-05-01",
        "attendance_log": []
    }
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	m, err := s.Get("M1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.BMI != 23.44 {
		t.Fatalf("stale bmi survived load: %v", m.BMI)
	}
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	// A directory at the data path makes every write fail
	path := filepath.Join(dir, "roster")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	s, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := s.Create("M1", "Ann", 30, "F", "555-0100", 60, 1.6, TierBasic); err == nil {
		t.Fatalf("expected save error")
	}

	// The mutation stays visible in memory
	if _, err := s.Get("M1"); err != nil {
		t.Fatalf("member lost after failed save: %v", err)
	}
}

func TestGetAnalytics(t *testing.T) {
	s := tempStore(t)

	// Empty roster reports zeroes and no tier breakdown
	stats := s.GetAnalytics()
	if stats.Total != 0 || stats.AvgBMI != 0 || stats.Tiers != nil {
		t.Fatalf("unexpected empty-roster analytics: %+v", stats)
	}

	// BMIs 20.0 and 30.0 average to exactly 25.0
	addMember(t, s, "M1", "Ann", 51.2, 1.6, TierBasic)
	addMember(t, s, "M2", "Bo", 76.8, 1.6, TierBasic)
	stats = s.GetAnalytics()
	if stats.Total != 2 {
		t.Fatalf("want total 2, got %d", stats.Total)
	}
	if stats.AvgBMI != 25.0 {
		t.Fatalf("want avg bmi 25.0, got %v", stats.AvgBMI)
	}

	// Tier counts include zero buckets
	addMember(t, s, "M3", "Cy", 64, 1.6, TierVIP)
	stats = s.GetAnalytics()
	want := map[MembershipTier]int{TierBasic: 2, TierPremium: 0, TierVIP: 1}
	if !reflect.DeepEqual(stats.Tiers, want) {
		t.Fatalf("want tiers %v, got %v", want, stats.Tiers)
	}
}

func TestAnalyticsUnknownTier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gym_data.json")
	doc := `{"M9": {"id": "M9", "name": "Old", "age": 50, "gender": "M", "phone": "555-0109", "weight": 64, "height": 1.6, "tier": "Gold"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s, err := NewRosterStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	// The member counts toward the total but lands in no tier bucket
	stats := s.GetAnalytics()
	if stats.Total != 1 {
		t.Fatalf("want total 1, got %d", stats.Total)
	}
	for tier, n := range stats.Tiers {
		if n != 0 {
			t.Fatalf("tier %s should be empty, got %d", tier, n)
		}
	}
}
