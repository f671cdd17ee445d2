package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared across packages.
const (
	KeyStoreKey    = "key"
	KeySessionType = "session_type"
	KeyTask        = "task"
	KeyCategory    = "category"
	KeyDurationS   = "duration_s"
	KeyRecordID    = "record_id"
	KeyAddr        = "addr"
	KeyChatID      = "chat_id"
	KeyCommand     = "command"
	KeyError       = "error"
)

func StoreKey(k string) slog.Attr              { return slog.String(KeyStoreKey, k) }
func SessionType(t string) slog.Attr           { return slog.String(KeySessionType, t) }
func Task(name string) slog.Attr               { return slog.String(KeyTask, name) }
func Category(name string) slog.Attr           { return slog.String(KeyCategory, name) }
func Duration(d time.Duration) slog.Attr       { return slog.Int64(KeyDurationS, int64(d/time.Second)) }
func RecordID(id string) slog.Attr             { return slog.String(KeyRecordID, id) }
func Addr(a string) slog.Attr                  { return slog.String(KeyAddr, a) }
func ChatID(id int64) slog.Attr                { return slog.Int64(KeyChatID, id) }
func Command(c string) slog.Attr               { return slog.String(KeyCommand, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
