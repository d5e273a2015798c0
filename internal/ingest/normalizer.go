package ingest

import "github.com/david/volunteer-board/internal/models"

// NormalizeEvent maps a raw row onto the fixed event shape. Unknown columns
// are discarded and absent ones become "". Values are kept verbatim: no
// trimming, no type coercion and no date or time validation.
func NormalizeEvent(row Row) models.EventRecord {
	return models.EventRecord{
		Title:       row["title"],
		Date:        row["date"],
		Time:        row["time"],
		Place:       row["place"],
		Target:      row["target"],
		Category:    row["category"],
		Capacity:    row["capacity"],
		Deadline:    row["deadline"],
		Description: row["description"],
		ApplyURL:    row["apply_url"],
	}
}

// NormalizeApplication maps a raw row onto the fixed application shape.
func NormalizeApplication(row Row) models.ApplicationRecord {
	return models.ApplicationRecord{
		EventTitle:  row["event_title"],
		StudentName: row["student_name"],
		School:      row["school"],
		Grade:       row["grade"],
		ClassName:   row["class"],
		Status:      row["status"],
	}
}

// NormalizeEvents normalizes every row, preserving input order.
func NormalizeEvents(rows []Row) []models.EventRecord {
	out := make([]models.EventRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeEvent(row))
	}
	return out
}

// NormalizeApplications normalizes every row, preserving input order.
func NormalizeApplications(rows []Row) []models.ApplicationRecord {
	out := make([]models.ApplicationRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, NormalizeApplication(row))
	}
	return out
}

// MissingColumns returns the entries of columns that no row carries. It
// returns nil for an empty feed, where there is nothing to compare.
func MissingColumns(rows []Row, columns []string) []string {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, col := range columns {
		found := false
		for _, row := range rows {
			if _, ok := row[col]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	return missing
}
