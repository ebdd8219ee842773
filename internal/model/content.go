package model

import (
	"encoding/json"
	"time"
)

// ContentEntry is one CMS block, an arbitrary JSON value stored under a unique key
type ContentEntry struct {
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}
