package main

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gym-management/gym"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

// memberRow is one record read from an import source, not yet validated.
type memberRow struct {
	id     string
	name   string
	age    int
	gender string
	phone  string
	weight float64
	height float64
	tier   string
}

var (
	dataPath   string
	csvPath    string
	legacyPath string
)

func main() {
	root := &cobra.Command{
		Use:   "import_members",
		Short: "Bulk-import gym members into the roster file",
		Long: `Seeds or extends the JSON roster from a CSV export or from a legacy
SQLite gym database. Rows with an unknown membership tier or an id that is
already registered are skipped and counted as errors.`,
		RunE:         runImport,
		SilenceUsage: true,
	}

	root.Flags().StringVar(&dataPath, "data", "gym_data.json", "roster file to import into")
	root.Flags().StringVar(&csvPath, "csv", "", "CSV export with an id,name,age,gender,phone,weight,height,tier header")
	root.Flags().StringVar(&legacyPath, "legacy-db", "", "legacy SQLite database with a members table")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	if (csvPath == "") == (legacyPath == "") {
		return fmt.Errorf("exactly one of --csv or --legacy-db must be given")
	}

	logger, closeLogger := gym.NewLogger("gym.log")
	defer closeLogger()

	store, err := gym.NewRosterStore(dataPath, logger)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}

	var rows []memberRow
	if csvPath != "" {
		fmt.Printf("Importing members from %s...\n", csvPath)
		rows, err = readCSV(csvPath)
	} else {
		fmt.Printf("Importing members from legacy database %s...\n", legacyPath)
		rows, err = readLegacyDB(legacyPath)
	}
	if err != nil {
		return err
	}

	successCount := 0
	errorCount := 0

	for _, row := range rows {
		fmt.Printf("Importing: %s (%s)... ", row.name, row.tier)

		tier, err := gym.ParseTier(row.tier)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}

		id := row.id
		if id == "" {
			id = uuid.NewString()
		}

		if err := store.Create(id, row.name, row.age, row.gender, row.phone, row.weight, row.height, tier); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}

		fmt.Printf("SUCCESS (ID: %s)\n", id)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d members\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	// Display the roster after import
	if successCount > 0 {
		fmt.Println("\nCurrent roster:")
		fmt.Printf("%-12s %-25s %-10s %-6s\n", "ID", "Name", "Tier", "BMI")
		fmt.Println(strings.Repeat("-", 60))
		for _, m := range store.Members() {
			fmt.Printf("%-12s %-25s %-10s %-6.2f\n",
				truncateString(m.ID, 12), truncateString(m.Name, 25), m.Tier, m.BMI)
		}
	}
	return nil
}

// readCSV loads member rows from a CSV export. The first line must be a
// header naming at least name, age, gender, phone, weight, height and tier;
// an id column is optional. Malformed records are skipped with a warning.
func readCSV(path string) ([]memberRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "age", "gender", "phone", "weight", "height", "tier"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv header missing %q column", required)
		}
	}

	var rows []memberRow
	for record := 1; ; record++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			fmt.Printf("Warning: skipping record %d: %v\n", record, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record %d: %w", record, err)
		}

		row, err := parseRecord(fields, col)
		if err != nil {
			fmt.Printf("Warning: skipping record %d: %v\n", record, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRecord converts one CSV record into a memberRow using the header's
// column positions.
func parseRecord(fields []string, col map[string]int) (memberRow, error) {
	get := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	age, err := strconv.Atoi(get("age"))
	if err != nil {
		return memberRow{}, fmt.Errorf("bad age %q", get("age"))
	}
	weight, err := strconv.ParseFloat(get("weight"), 64)
	if err != nil {
		return memberRow{}, fmt.Errorf("bad weight %q", get("weight"))
	}
	height, err := strconv.ParseFloat(get("height"), 64)
	if err != nil {
		return memberRow{}, fmt.Errorf("bad height %q", get("height"))
	}

	return memberRow{
		id:     get("id"),
		name:   get("name"),
		age:    age,
		gender: get("gender"),
		phone:  get("phone"),
		weight: weight,
		height: height,
		tier:   get("tier"),
	}, nil
}

// readLegacyDB loads member rows from the members table of the SQLite
// database that predates the JSON roster.
func readLegacyDB(path string) ([]memberRow, error) {
	// Check the file first; the sqlite driver would create an empty one.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database not accessible: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open legacy db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT COALESCE(id,''), name, age, gender, phone, weight, height, tier FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query legacy members: %w", err)
	}
	defer rows.Close()

	var out []memberRow
	for rows.Next() {
		var row memberRow
		if err := rows.Scan(&row.id, &row.name, &row.age, &row.gender, &row.phone, &row.weight, &row.height, &row.tier); err != nil {
			return nil, fmt.Errorf("scan legacy member: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
