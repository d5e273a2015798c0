package board

import "fmt"

// StatusState is one of the five mutually exclusive states a view reports.
type StatusState string

const (
	StatusLoading    StatusState = "loading"
	StatusLoadFailed StatusState = "load_failed"
	StatusNoData     StatusState = "no_data"
	StatusNoMatch    StatusState = "no_match"
	StatusAvailable  StatusState = "available"
)

// User-facing status texts.
const (
	MessageLoading    = "Loading event data…"
	MessageLoadFailed = "An error occurred while loading event data. Please contact the administrator."
	MessageNoData     = "No event data is available (please check the spreadsheet)."
	MessageNoMatch    = "No volunteer opportunities matched your criteria."
	messageListed     = "%d volunteer opportunities are currently listed."
	messageFound      = "%d volunteer opportunities found."
)

// Status is what a view tells the user about the records it shows.
type Status struct {
	State   StatusState `json:"state"`
	Count   int         `json:"count"`
	Message string      `json:"message"`
}

// ComputeStatus picks the status for a view in precedence order: loading,
// load failure, no data, no match, available. total is the size of the full
// record set, matched the size of the filtered subset and filtered whether
// any criteria were applied.
func ComputeStatus(loading bool, failed bool, total, matched int, filtered bool) Status {
	switch {
	case loading:
		return Status{State: StatusLoading, Message: MessageLoading}
	case failed:
		return Status{State: StatusLoadFailed, Message: MessageLoadFailed}
	case total == 0:
		return Status{State: StatusNoData, Message: MessageNoData}
	case matched == 0:
		return Status{State: StatusNoMatch, Message: MessageNoMatch}
	case !filtered:
		return Status{State: StatusAvailable, Count: matched, Message: fmt.Sprintf(messageListed, matched)}
	default:
		return Status{State: StatusAvailable, Count: matched, Message: fmt.Sprintf(messageFound, matched)}
	}
}
