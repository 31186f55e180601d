package domain

// ActorRef is the denormalized author/actor shown next to posts, comments and notifications
type ActorRef struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Handle returns the formatted @user string
func (a ActorRef) Handle() string {
	if a.Username == "" {
		return "@" + a.Id
	}
	return "@" + a.Username
}

// Name prefers the display name and falls back to the handle
func (a ActorRef) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Handle()
}
