package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nwsirlp/skillgraph/pkg/common"
)

// ParseJSON parses a full dataset from one JSON document.
func ParseJSON(content []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(content, &ds); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return ds, nil
}

// readRecords reads CSV rows tolerantly: lazy quotes, ragged rows, blank
// rows skipped, unreadable rows skipped. A leading header row is detected by
// its first cell and dropped.
func readRecords(content []byte, headerCell string) [][]string {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		isEmpty := true
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
			if record[i] != "" {
				isEmpty = false
			}
		}
		if isEmpty {
			continue
		}

		if len(records) == 0 && strings.EqualFold(record[0], headerCell) {
			continue
		}
		records = append(records, record)
	}
	return records
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// ParseEmployeesCSV parses rows of the form
// id,name,department,role,bio,years_experience. Rows without a name are
// dropped by Normalize later.
func ParseEmployeesCSV(content []byte) []common.Employee {
	records := readRecords(content, "id")

	employees := make([]common.Employee, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		years, _ := strconv.Atoi(field(record, 5))
		employees = append(employees, common.Employee{
			ID:              field(record, 0),
			Name:            field(record, 1),
			Department:      field(record, 2),
			Role:            field(record, 3),
			Bio:             field(record, 4),
			YearsExperience: years,
		})
	}
	return employees
}

// ParseSkillsCSV parses rows of the form id,name,category,tags where tags
// are separated by semicolons.
func ParseSkillsCSV(content []byte) []common.Skill {
	records := readRecords(content, "id")

	skills := make([]common.Skill, 0, len(records))
	for _, record := range records {
		if len(record) < 2 {
			continue
		}

		var tags []string
		for _, tag := range strings.Split(field(record, 3), ";") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}

		skills = append(skills, common.Skill{
			ID:       field(record, 0),
			Name:     field(record, 1),
			Category: field(record, 2),
			Tags:     tags,
		})
	}
	return skills
}

// ParsePossessionsCSV parses rows of the form
// employee_id,skill_id,proficiency,years,certified.
func ParsePossessionsCSV(content []byte) []common.SkillPossession {
	records := readRecords(content, "employee_id")

	possessions := make([]common.SkillPossession, 0, len(records))
	for _, record := range records {
		if len(record) < 3 {
			continue
		}
		proficiency, err := strconv.Atoi(field(record, 2))
		if err != nil {
			continue
		}
		years, _ := strconv.ParseFloat(field(record, 3), 64)
		certified, _ := strconv.ParseBool(field(record, 4))

		possessions = append(possessions, common.SkillPossession{
			EmployeeID:  field(record, 0),
			SkillID:     field(record, 1),
			Proficiency: proficiency,
			Years:       years,
			Certified:   certified,
		})
	}
	return possessions
}
