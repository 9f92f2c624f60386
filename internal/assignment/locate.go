package assignment

import "strings"

// Match is the anchor row found by Locate and the status read around it.
type Match struct {
	RowIndex int
	Status
}

// JoinRow flattens a table row the same way the browser stringifies an
// array of cell texts.
func JoinRow(row []string) string {
	return strings.Join(row, ",")
}

// Locate finds the deadline row of a submission status table and reads
// the status from its neighbours:
//
//	i-2  submission status
//	i-1  grading status
//	i    deadline
//	i+1  submission
//
// Only the first row that parses as a real date is considered. When that
// row has no room for its neighbours the table is treated as unreadable.
func Locate(grid [][]string) (Match, bool) {
	for i, row := range grid {
		text := JoinRow(row)
		if strings.Contains(text, "Group") {
			continue
		}
		due, ok := ParseDate(text)
		if !ok || isNullDate(due) {
			continue
		}

		if i < 2 || i+1 >= len(grid) {
			return Match{}, false
		}
		return Match{
			RowIndex: i,
			Status: Status{
				SubmissionStatus: JoinRow(grid[i-2]),
				GradingStatus:    JoinRow(grid[i-1]),
				Deadline:         text,
				Due:              due,
				Submission:       JoinRow(grid[i+1]),
			},
		}, true
	}
	return Match{}, false
}
