package stub

import "time"

// PushRequest mirrors the Expo push message body.
type PushRequest struct {
	To       string            `json:"to" binding:"required"`
	Sound    string            `json:"sound"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data"`
	Priority string            `json:"priority"`
	Badge    int               `json:"badge"`
}

type pushTicket struct {
	Status  string        `json:"status"`
	ID      string        `json:"id,omitempty"`
	Message string        `json:"message,omitempty"`
	Details ticketDetails `json:"details,omitempty"`
}

type ticketDetails struct {
	Error string `json:"error,omitempty"`
}

type pushResponse struct {
	Data pushTicket `json:"data"`
}

type UnregisterRequest struct {
	Tokens []string `json:"tokens" binding:"required"`
}

// MinuteStats summarises the pushes received in one UTC minute.
type MinuteStats struct {
	Minute     time.Time `json:"minute"`
	Accepted   int       `json:"accepted"`
	Rejected   int       `json:"rejected"`
	Duplicates int       `json:"duplicates"`
}

type RunStats struct {
	RunID      string        `json:"run_id"`
	Accepted   int           `json:"accepted"`
	Rejected   int           `json:"rejected"`
	Duplicates int           `json:"duplicates"`
	Minutes    []MinuteStats `json:"minutes"`
}
