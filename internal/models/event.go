package models

// EventRecord is one normalized row of the event listing feed.
// Every field is a plain string so an absent column is always "".
type EventRecord struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Place       string `json:"place"`
	Target      string `json:"target"`
	Category    string `json:"category"`
	Capacity    string `json:"capacity"`
	Deadline    string `json:"deadline"`
	Description string `json:"description"`
	ApplyURL    string `json:"apply_url"`
}

// ApplicationRecord is one normalized row of the applications feed.
// It relates to an EventRecord only through the free-text EventTitle.
type ApplicationRecord struct {
	EventTitle  string `json:"event_title"`
	StudentName string `json:"student_name"`
	School      string `json:"school"`
	Grade       string `json:"grade"`
	ClassName   string `json:"class"`
	Status      string `json:"status"`
}
