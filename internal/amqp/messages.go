package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// RecordEvent announces a committed change to one record. It carries ids
// only; consumers that need the record read it from the store.
type RecordEvent struct {
	EventID  string    `json:"event_id"`
	Entity   string    `json:"entity"`
	Action   Action    `json:"action"`
	RecordID string    `json:"record_id"`
	Owner    string    `json:"owner"`
	At       time.Time `json:"at"`
}

func NewRecordEvent(entity string, action Action, recordID, owner string) RecordEvent {
	return RecordEvent{
		EventID:  uuid.NewString(),
		Entity:   entity,
		Action:   action,
		RecordID: recordID,
		Owner:    owner,
		At:       time.Now().UTC(),
	}
}

func (e RecordEvent) Validate() error {
	switch {
	case e.Entity == "":
		return errors.New("record event: missing entity")
	case e.Owner == "":
		return errors.New("record event: missing owner")
	case e.RecordID == "":
		return errors.New("record event: missing record id")
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return nil
	}
	return fmt.Errorf("record event: unknown action %q", e.Action)
}

func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and validates a message body.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var e RecordEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
