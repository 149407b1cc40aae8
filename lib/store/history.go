package store

import (
	"github.com/ValentinKolb/localdb/lib/codec"
	"time"
)

// ChatHistoriesKey is the logical key the chat histories are stored under
const ChatHistoriesKey = "chatHistories"

// timestampLayout renders UTC timestamps with millisecond precision
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHistory is one saved conversation
type ChatHistory struct {
	ID        int64     `json:"id"`
	Timestamp string    `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// now is replaced in tests
var now = time.Now

// SaveChatHistory appends a conversation to the stored list and returns the saved entry.
// The id is the current Unix time in milliseconds, bumped when necessary so ids stay
// strictly increasing within the list.
func (s *Store) SaveChatHistory(messages []Message) (ChatHistory, error) {
	histories, err := s.LoadChatHistories()
	if err != nil {
		return ChatHistory{}, err
	}

	t := now()
	id := t.UnixMilli()
	if n := len(histories); n > 0 && histories[n-1].ID >= id {
		id = histories[n-1].ID + 1
	}
	if messages == nil {
		messages = []Message{}
	}

	entry := ChatHistory{
		ID:        id,
		Timestamp: t.UTC().Format(timestampLayout),
		Messages:  messages,
	}
	if err := s.Set(ChatHistoriesKey, append(histories, entry)); err != nil {
		Logger.Errorf("failed to save chat history: %v", err)
		return ChatHistory{}, err
	}
	return entry, nil
}

// LoadChatHistories returns the stored conversations in the order they were saved.
// The result is empty (not nil) when nothing is stored. Read failures are returned
// so a following save never replaces a list it could not read.
func (s *Store) LoadChatHistories() ([]ChatHistory, error) {
	value, err := s.get(ChatHistoriesKey, s.tenant.resolve(ChatHistoriesKey))
	if err != nil {
		s.report(err, "failed to load chat histories")
		return nil, err
	}
	if value == nil {
		return []ChatHistory{}, nil
	}

	histories, err := codec.Convert[[]ChatHistory](value)
	if err != nil {
		Logger.Errorf("failed to load chat histories: %v", err)
		return nil, WrapError(RetCInternalError, "stored chat histories are malformed", err)
	}
	if histories == nil {
		return []ChatHistory{}, nil
	}
	return histories, nil
}
