package domain

import "time"

type CallMedia string

const (
	CallAudio CallMedia = "audio"
	CallVideo CallMedia = "video"
)

// CallInvite is the call-signaling view of a call-invite notification
type CallInvite struct {
	CallId string    `json:"callId"`
	Caller ActorRef  `json:"caller"`
	Media  CallMedia `json:"media"`
	At     time.Time `json:"at"`
}

// CallResponse is the call-signaling view of a call-response notification
type CallResponse struct {
	CallId    string    `json:"callId"`
	Responder ActorRef  `json:"responder"`
	Accepted  bool      `json:"accepted"`
	At        time.Time `json:"at"`
}
