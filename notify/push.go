package notify

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/deemkeen/feedsync/domain"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

var validate = validator.New()

// pushFields are the fields a push payload must carry to become a notification
type pushFields struct {
	Id   string `validate:"required"`
	Type string `validate:"required,oneof=like comment follow story-view mention system call-invite call-response"`
}

var typeAliases = map[string]domain.NotificationType{
	"reply":      domain.NotificationComment,
	"storyview":  domain.NotificationStoryView,
	"call":       domain.NotificationCallInvite,
	"callinvite": domain.NotificationCallInvite,
}

// payloadOf unwraps {"notification": {...}} and {"data": {...}} envelopes
func payloadOf(raw []byte) gjson.Result {
	root := gjson.ParseBytes(raw)
	for _, key := range []string{"notification", "data", "payload"} {
		if inner := root.Get(key); inner.IsObject() {
			return inner
		}
	}
	return root
}

func normalizeType(s string) domain.NotificationType {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.ReplaceAll(t, "_", "-")
	if alias, ok := typeAliases[strings.ReplaceAll(t, "-", "")]; ok {
		return alias
	}
	return domain.NotificationType(t)
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func parseTime(r gjson.Result) time.Time {
	v := r.Get("createdAt")
	if !v.Exists() {
		v = r.Get("created_at")
	}
	switch v.Type {
	case gjson.Number:
		ms := v.Int()
		if ms > 1e12 {
			return time.UnixMilli(ms)
		}
		return time.Unix(ms, 0)
	case gjson.String:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v.Str); err == nil {
				return t
			}
		}
	}
	return time.Now()
}

func parseActor(r gjson.Result) domain.ActorRef {
	sender := r.Get("sender")
	if !sender.IsObject() {
		sender = r.Get("actor")
	}
	if !sender.IsObject() {
		return domain.ActorRef{
			Id:       firstString(r, "senderId", "actorId"),
			Username: firstString(r, "senderUsername", "senderName"),
		}
	}
	return domain.ActorRef{
		Id:          firstString(sender, "id", "userId"),
		Username:    firstString(sender, "username", "userName"),
		DisplayName: firstString(sender, "displayName", "fullName", "name"),
		AvatarURL:   firstString(sender, "avatarUrl", "profilePicture", "avatar"),
	}
}

// ParsePush converts one push frame into a notification
func ParsePush(raw []byte) (domain.Notification, error) {
	if !gjson.ValidBytes(raw) {
		return domain.Notification{}, fmt.Errorf("push payload is not valid JSON")
	}
	p := payloadOf(raw)

	fields := pushFields{
		Id:   firstString(p, "id", "notificationId"),
		Type: string(normalizeType(firstString(p, "type", "notificationType"))),
	}
	if err := validate.Struct(fields); err != nil {
		return domain.Notification{}, fmt.Errorf("invalid push payload: %w", err)
	}

	return domain.Notification{
		Id:              fields.Id,
		Type:            domain.NotificationType(fields.Type),
		Title:           firstString(p, "title"),
		Message:         firstString(p, "message", "body"),
		Sender:          parseActor(p),
		RelatedEntityId: firstString(p, "relatedEntityId", "entityId", "postId"),
		IsRead:          p.Get("isRead").Bool() || p.Get("read").Bool(),
		CreatedAt:       parseTime(p),
	}, nil
}

func callInvite(n domain.Notification, raw []byte) domain.CallInvite {
	p := payloadOf(raw)
	media := domain.CallAudio
	if strings.EqualFold(firstString(p, "callType", "media"), string(domain.CallVideo)) {
		media = domain.CallVideo
	}
	return domain.CallInvite{
		CallId: callId(p, n),
		Caller: n.Sender,
		Media:  media,
		At:     n.CreatedAt,
	}
}

func callResponse(n domain.Notification, raw []byte) domain.CallResponse {
	p := payloadOf(raw)
	var accepted bool
	switch status := strings.ToLower(firstString(p, "status", "response")); {
	case p.Get("accepted").Exists():
		accepted = p.Get("accepted").Bool()
	case status != "":
		accepted = status == "accepted" || status == "accept"
	default:
		accepted = acceptedFromMessage(n.Message)
	}
	return domain.CallResponse{
		CallId:    callId(p, n),
		Responder: n.Sender,
		Accepted:  accepted,
		At:        n.CreatedAt,
	}
}

// acceptedFromMessage reads a human readable response such as
// "ann accepted your call". Any refusal or negation wins over "accepted".
func acceptedFromMessage(message string) bool {
	accepted := false
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	for _, w := range words {
		switch {
		case w == "not" || w == "never" || strings.HasSuffix(w, "n't"),
			strings.HasPrefix(w, "declin"), strings.HasPrefix(w, "reject"),
			strings.HasPrefix(w, "missed"), strings.HasPrefix(w, "busy"):
			return false
		case w == "accept" || w == "accepts" || w == "accepted":
			accepted = true
		}
	}
	return accepted
}

func callId(p gjson.Result, n domain.Notification) string {
	if id := firstString(p, "callId", "roomId"); id != "" {
		return id
	}
	return n.RelatedEntityId
}
