package domain

import "time"

// DecisionGroup labels two or more of a user's decisions. Groups are
// create-only on the server side.
type DecisionGroup struct {
	GroupID     string    `json:"groupId"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DecisionIDs []string  `json:"decisionIds"`
	CreatedAt   time.Time `json:"createdAt"`
}
