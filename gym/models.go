package gym

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Date layouts used in the roster file. Check-in timestamps carry second
// precision so the log stays in chronological order when sorted as strings.
const (
	DateLayout    = "2006-01-02"
	CheckInLayout = "2006-01-02 15:04:05"
)

// MembershipTier is the plan a member is enrolled under.
type MembershipTier string

const (
	TierBasic   MembershipTier = "Basic"
	TierPremium MembershipTier = "Premium"
	TierVIP     MembershipTier = "VIP"
)

// Tiers lists every known membership tier in display order.
var Tiers = []MembershipTier{TierBasic, TierPremium, TierVIP}

// ParseTier maps user input onto a known tier, ignoring case. Unknown values
// are rejected so callers can re-prompt instead of enrolling someone under a
// plan they never picked.
func ParseTier(s string) (MembershipTier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown membership tier %q", s)
}

// Member represents a registered gym member as stored in the roster file.
// BMI is derived from weight and height; the stored value is recomputed on
// every load and never trusted from disk.
type Member struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Age           int            `json:"age"`
	Gender        string         `json:"gender"`
	Phone         string         `json:"phone"`
	Weight        float64        `json:"weight"` // kilograms
	Height        float64        `json:"height"` // meters
	BMI           float64        `json:"bmi"`
	Tier          MembershipTier `json:"tier"`
	JoinDate      string         `json:"join_date"`
	AttendanceLog []string       `json:"attendance_log"`
}

// NewMember builds a member with its BMI computed and the join date set to
// today. Field validation belongs to the caller.
func NewMember(id, name string, age int, gender, phone string, weight, height float64, tier MembershipTier) *Member {
	return &Member{
		ID:            id,
		Name:          name,
		Age:           age,
		Gender:        gender,
		Phone:         phone,
		Weight:        weight,
		Height:        height,
		BMI:           calculateBMI(weight, height),
		Tier:          tier,
		JoinDate:      time.Now().Format(DateLayout),
		AttendanceLog: []string{},
	}
}

// calculateBMI returns weight divided by height squared, rounded to two
// decimals. A zero height yields 0 rather than a division error.
func calculateBMI(weight, height float64) float64 {
	if height == 0 {
		return 0
	}
	return math.Round(weight/(height*height)*100) / 100
}

// MarkAttendance appends a check-in timestamp for the current moment.
func (m *Member) MarkAttendance() {
	m.AttendanceLog = append(m.AttendanceLog, time.Now().Format(CheckInLayout))
}

// LastSeen returns the most recent check-in timestamp, or "" when the member
// has never checked in.
func (m *Member) LastSeen() string {
	if len(m.AttendanceLog) == 0 {
		return ""
	}
	return m.AttendanceLog[len(m.AttendanceLog)-1]
}

// UnmarshalJSON restores a member from its stored document. Records written
// by older versions may lack join_date or attendance_log; those default to
// the current date and an empty log. BMI is always recomputed from weight and
// height, so a stale stored value cannot survive a reload.
func (m *Member) UnmarshalJSON(data []byte) error {
	type alias Member
	if err := json.Unmarshal(data, (*alias)(m)); err != nil {
		return err
	}
	if m.JoinDate == "" {
		m.JoinDate = time.Now().Format(DateLayout)
	}
	if m.AttendanceLog == nil {
		m.AttendanceLog = []string{}
	}
	m.BMI = calculateBMI(m.Weight, m.Height)
	return nil
}

// Analytics summarizes the roster for the reporting view. Tiers holds a count
// for every known tier, including zeroes; it is nil when the roster is empty.
type Analytics struct {
	Total  int                    `json:"total"`
	AvgBMI float64                `json:"avg_bmi"`
	Tiers  map[MembershipTier]int `json:"tiers"`
}
