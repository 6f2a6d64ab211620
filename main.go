package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gym-management/gym"

	"github.com/google/uuid"
	"golang.org/x/term"
)

const (
	dataFile = "gym_data.json"
	logFile  = "gym.log"
)

// readLine prompts for one line of input and returns it trimmed. ok is false
// when stdin is exhausted.
func readLine(sc *bufio.Scanner, prompt string) (value string, ok bool) {
	fmt.Print(prompt)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// readInt re-prompts until the input parses as an integer.
func readInt(sc *bufio.Scanner, prompt string) (int, bool) {
	for {
		text, ok := readLine(sc, prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Println("Invalid input")
			continue
		}
		return n, true
	}
}

// readFloat re-prompts until the input parses as a number.
func readFloat(sc *bufio.Scanner, prompt string) (float64, bool) {
	for {
		text, ok := readLine(sc, prompt)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			fmt.Println("Invalid input")
			continue
		}
		return f, true
	}
}

// readTier re-prompts until the input names a known membership tier. Unknown
// tiers are rejected rather than silently downgraded to Basic.
func readTier(sc *bufio.Scanner) (gym.MembershipTier, bool) {
	for {
		text, ok := readLine(sc, "Select Tier: ")
		if !ok {
			return "", false
		}
		tier, err := gym.ParseTier(text)
		if err != nil {
			fmt.Println("Unknown tier. Choose Basic, Premium or VIP.")
			continue
		}
		return tier, true
	}
}

func main() {
	logger, closeLogger := gym.NewLogger(logFile)
	defer closeLogger()

	store, err := gym.NewRosterStore(dataFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening roster: %v\n", err)
		os.Exit(1)
	}

	clearScreen()
	fmt.Printf("System: Loaded %d records from database.\n", len(store.Members()))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\n=================================")
		fmt.Println("   ELITE GYM MANAGEMENT SYSTEM")
		fmt.Println("=================================")
		fmt.Println("1. Register New Member")
		fmt.Println("2. View All Members")
		fmt.Println("3. Member Check-In (Attendance)")
		fmt.Println("4. Member Search & Profile")
		fmt.Println("5. Remove Member")
		fmt.Println("6. Gym Analytics")
		fmt.Println("7. Exit")

		fmt.Print("\nSelect Action (1-7): ")
		if !scanner.Scan() {
			break
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			handleRegister(scanner, store)
		case "2":
			handleViewAll(store)
		case "3":
			handleCheckIn(scanner, store)
		case "4":
			handleSearch(scanner, store)
		case "5":
			handleRemove(scanner, store)
		case "6":
			handleAnalytics(store)
		case "7":
			fmt.Print("Saving data... ")
			if err := store.Save(); err != nil {
				fmt.Printf("\nError: %v\n", err)
			}
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid selection.")
		}
	}
}

func handleRegister(sc *bufio.Scanner, store *gym.RosterStore) {
	header("Register Member")

	id, ok := readLine(sc, "Assign ID (press Enter to auto-generate): ")
	if !ok {
		return
	}
	if id == "" {
		id = uuid.NewString()
	}

	name, ok := readLine(sc, "Full Name: ")
	if !ok {
		return
	}
	age, ok := readInt(sc, "Age: ")
	if !ok {
		return
	}
	gender, ok := readLine(sc, "Gender (M/F/O): ")
	if !ok {
		return
	}
	gender = strings.ToUpper(gender)
	phone, ok := readLine(sc, "Phone: ")
	if !ok {
		return
	}
	weight, ok := readFloat(sc, "Weight (kg): ")
	if !ok {
		return
	}
	height, ok := readFloat(sc, "Height (m): ")
	if !ok {
		return
	}

	fmt.Println("\nMembership Tiers: Basic, Premium, VIP")
	tier, ok := readTier(sc)
	if !ok {
		return
	}

	if err := store.Create(id, name, age, gender, phone, weight, height, tier); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Success: %s registered as %s member (ID: %s).\n", name, tier, id)
}

func handleViewAll(store *gym.RosterStore) {
	header("Member Roster")

	members := store.Members()
	if len(members) == 0 {
		fmt.Println("Database empty.")
		return
	}

	fmt.Printf("%-8s %-20s %-10s %-6s %s\n", "ID", "Name", "Tier", "BMI", "Status")
	fmt.Println(strings.Repeat("-", 60))
	for _, m := range members {
		fmt.Printf("%-8s %-20s %-10s %-6.2f %s\n",
			truncateString(m.ID, 8),
			truncateString(m.Name, 20),
			m.Tier,
			m.BMI,
			bmiStatus(m.BMI))
	}
}

func handleCheckIn(sc *bufio.Scanner, store *gym.RosterStore) {
	header("Attendance Check-In")

	id, ok := readLine(sc, "Scan/Enter ID: ")
	if !ok {
		return
	}

	name, err := store.LogAttendance(id)
	if err != nil {
		var notFound *gym.MemberNotFoundError
		if errors.As(err, &notFound) {
			fmt.Println("ID not recognized.")
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		return
	}
	fmt.Printf("Welcome back, %s! Checked in at %s.\n", name, time.Now().Format("15:04"))
}

func handleSearch(sc *bufio.Scanner, store *gym.RosterStore) {
	id, ok := readLine(sc, "Search ID: ")
	if !ok {
		return
	}

	m, err := store.Get(id)
	if err != nil {
		fmt.Println("Member not found.")
		return
	}

	fmt.Printf("\nProfile: %s\n", m.Name)
	fmt.Printf("Tier:    %s\n", m.Tier)
	fmt.Printf("BMI:     %.2f (Height: %gm | Weight: %gkg)\n", m.BMI, m.Height, m.Weight)
	fmt.Printf("Phone:   %s\n", m.Phone)
	fmt.Printf("Visits:  %d total check-ins\n", len(m.AttendanceLog))
	if last := m.LastSeen(); last != "" {
		fmt.Printf("Last Seen: %s\n", last)
	}
}

func handleRemove(sc *bufio.Scanner, store *gym.RosterStore) {
	id, ok := readLine(sc, "Enter ID to remove: ")
	if !ok {
		return
	}

	confirm, ok := readLine(sc, fmt.Sprintf("Are you sure you want to delete %s? (y/n): ", id))
	if !ok || !strings.EqualFold(confirm, "y") {
		return
	}

	if err := store.Delete(id); err != nil {
		var notFound *gym.MemberNotFoundError
		if errors.As(err, &notFound) {
			fmt.Println("ID not found.")
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		return
	}
	fmt.Println("Record deleted.")
}

func handleAnalytics(store *gym.RosterStore) {
	header("Gym Analytics")

	stats := store.GetAnalytics()
	fmt.Printf("Total Members: %d\n", stats.Total)
	fmt.Printf("Average BMI:   %.2f\n", stats.AvgBMI)
	if len(stats.Tiers) == 0 {
		return
	}
	fmt.Println("Membership Distribution:")
	for _, tier := range gym.Tiers {
		fmt.Printf(" - %s: %d\n", tier, stats.Tiers[tier])
	}
}

// header prints a section divider matching the rest of the menu output.
func header(text string) {
	fmt.Printf("\n--- %s ---\n", text)
}

// bmiStatus labels a BMI for the roster table. The normal band is 18.5
// through 24.9 inclusive.
func bmiStatus(bmi float64) string {
	if bmi >= 18.5 && bmi <= 24.9 {
		return "Normal"
	}
	return "Attn Req"
}

// clearScreen resets the terminal before the first menu draw. Skipped when
// stdout is not a terminal so piped output stays clean.
func clearScreen() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print("\033[2J\033[H")
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
