package gateway

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// EventType 事件类型
type EventType string

const (
	EventPersonAdded    EventType = "PERSON_ADDED"
	EventPersonUpdated  EventType = "PERSON_UPDATED"
	EventPersonDeleted  EventType = "PERSON_DELETED"
	EventProjectAdded   EventType = "PROJECT_ADDED"
	EventProjectUpdated EventType = "PROJECT_UPDATED"
	EventProjectDeleted EventType = "PROJECT_DELETED"
	EventTasksUpdated   EventType = "TASKS_UPDATED"
)

// ErrMalformedMessage 入站帧不是合法的 {type,data} 信封
var ErrMalformedMessage = errors.New("malformed message")

// Event 推送事件，构造后不再修改
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// NewEvent 构造事件
func NewEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data}
}

// Marshal 编码为线上信封
func (e Event) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s event", e.Type)
	}
	return b, nil
}

type envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// decodeEnvelope 解析入站信封，data 原样保留
func decodeEnvelope(b []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Event{}, errors.Mark(errors.Wrap(err, "decode envelope"), ErrMalformedMessage)
	}
	if env.Type == "" {
		return Event{}, errors.Wrap(ErrMalformedMessage, "missing type")
	}
	if env.Data == nil {
		env.Data = json.RawMessage("null")
	}
	return Event{Type: env.Type, Data: env.Data}, nil
}
