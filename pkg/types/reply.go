package types

import "time"

// TicketReply is one message on a support ticket thread.
type TicketReply struct {
	From    string    `json:"from"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
