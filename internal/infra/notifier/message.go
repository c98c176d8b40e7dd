package notifier

import "github.com/KasumiMercury/primind-task-dispatcher/internal/domain"

// pushMessage is the Expo push message body. Cloud Tasks forwards the same
// payload so the push worker can relay it untouched.
type pushMessage struct {
	To       string            `json:"to"`
	Sound    string            `json:"sound,omitempty"`
	Title    string            `json:"title"`
	Body     string            `json:"body,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Priority string            `json:"priority,omitempty"`
	Badge    int               `json:"badge,omitempty"`
}

func newPushMessage(n domain.Notification) pushMessage {
	return pushMessage{
		To:       n.Token,
		Sound:    n.Sound,
		Title:    n.Title,
		Body:     n.Body,
		Data:     n.Data,
		Priority: n.Priority,
		Badge:    n.Badge,
	}
}
