package model

import "time"

// PortalHost names the portal. FallbackIP is used only when Name does not resolve.
type PortalHost struct {
	Name       string
	FallbackIP string
}

type LoginStatus struct {
	LoggedIn bool
	User     string
	IP       string
}

// Outcome is the result of a login or logout attempt. Message is always set.
// User and IP name the session acted on, when known.
type Outcome struct {
	Succeeded bool
	Message   string
	User      string
	IP        string
}

type Event struct {
	Time      time.Time `json:"time" bson:"time"`
	Action    string    `json:"action" bson:"action"`
	User      string    `json:"user,omitempty" bson:"user,omitempty"`
	IP        string    `json:"ip,omitempty" bson:"ip,omitempty"`
	Succeeded bool      `json:"succeeded" bson:"succeeded"`
	Message   string    `json:"message" bson:"message"`
}

func (e Event) Result() string {
	if e.Succeeded {
		return "ok"
	}
	return "failed"
}
