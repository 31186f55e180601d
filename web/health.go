package web

import (
	"encoding/json"
	"log"

	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/util"
)

// Health is the /healthz document
type Health struct {
	Status   string         `json:"status"`
	Software HealthSoftware `json:"software"`
	Viewer   string         `json:"viewer"`
	Usage    HealthUsage    `json:"usage"`
}

type HealthSoftware struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthUsage struct {
	Posts          int `json:"posts"`
	Reels          int `json:"reels"`
	CommentThreads int `json:"commentThreads"`
	Notifications  int `json:"notifications"`
	Unread         int `json:"unread"`
	Saved          int `json:"saved"`
}

// GetHealth summarizes what the store currently holds
func GetHealth(snap store.Snapshot) Health {
	return Health{
		Status: "ok",
		Software: HealthSoftware{
			Name:    util.Name,
			Version: util.GetVersion(),
		},
		Viewer: snap.Viewer,
		Usage: HealthUsage{
			Posts:          len(snap.Feed),
			Reels:          len(snap.Reels),
			CommentThreads: len(snap.Comments),
			Notifications:  len(snap.Notifications),
			Unread:         snap.Unread,
			Saved:          len(snap.Saved),
		},
	}
}

// GetHealthJSON is GetHealth encoded, falling back to a bare status on error
func GetHealthJSON(snap store.Snapshot) string {
	jsonBytes, err := json.Marshal(GetHealth(snap))
	if err != nil {
		log.Printf("Failed to marshal health: %v", err)
		return `{"status":"ok"}`
	}
	return string(jsonBytes)
}
