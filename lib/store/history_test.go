package store

import (
	"testing"
	"time"

	"github.com/ValentinKolb/localdb/lib/medium"
	"github.com/ValentinKolb/localdb/lib/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freezeTime pins now to t for the duration of the test
func freezeTime(tb testing.TB, t time.Time) {
	tb.Helper()
	prev := now
	now = func() time.Time { return t }
	tb.Cleanup(func() { now = prev })
}

func TestLoadChatHistoriesEmpty(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	histories, err := s.LoadChatHistories()
	require.NoError(t, err)
	assert.NotNil(t, histories)
	assert.Empty(t, histories)
}

func TestSaveChatHistory(t *testing.T) {
	s, m, _ := newTestStore(t, "t")
	at := time.Date(2024, 5, 1, 12, 30, 0, 250_000_000, time.UTC)
	freezeTime(t, at)

	first := []Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	saved, err := s.SaveChatHistory(first)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), saved.ID)
	assert.Equal(t, "2024-05-01T12:30:00.250Z", saved.Timestamp)
	assert.Equal(t, first, saved.Messages)

	// same clock reading: ids still strictly increase
	second, err := s.SaveChatHistory([]Message{{Role: "user", Content: "again"}})
	require.NoError(t, err)
	assert.Equal(t, saved.ID+1, second.ID)

	histories, err := s.LoadChatHistories()
	require.NoError(t, err)
	assert.Equal(t, []ChatHistory{saved, second}, histories)

	_, ok := rawValue(t, m, "t:"+ChatHistoriesKey)
	assert.True(t, ok, "histories live in the tenant scope")
}

func TestSaveChatHistoryNilMessages(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	saved, err := s.SaveChatHistory(nil)
	require.NoError(t, err)
	assert.NotNil(t, saved.Messages)

	histories, err := s.LoadChatHistories()
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Empty(t, histories[0].Messages)
}

func TestChatHistoriesNotifyWatchers(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	events := 0
	s.Watch(ChatHistoriesKey, func(Event) { events++ })

	_, err := s.SaveChatHistory([]Message{{Role: "user", Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, events)
}

func TestLoadChatHistoriesMalformed(t *testing.T) {
	s, _, _ := newTestStore(t, "t")
	require.NoError(t, s.Set(ChatHistoriesKey, "not a list"))

	_, err := s.LoadChatHistories()
	assert.True(t, IsCode(err, RetCInternalError))

	_, err = s.SaveChatHistory([]Message{{Role: "user", Content: "x"}})
	assert.Error(t, err, "a malformed list is not overwritten")
	assert.Equal(t, "not a list", s.Get(ChatHistoriesKey))
}

func TestSaveChatHistoryKeepsListOnReadFailure(t *testing.T) {
	f := &faultyMedium{IMedium: medium.NewMemoryMedium()}
	t.Cleanup(func() { _ = f.Close() })
	rec := &recorder{}
	s := NewStore(f, &Options{Tenant: "t", Notifier: rec})

	_, err := s.SaveChatHistory([]Message{{Role: "user", Content: "a"}})
	require.NoError(t, err)
	_, err = s.SaveChatHistory([]Message{{Role: "user", Content: "b"}})
	require.NoError(t, err)

	f.failReads = true
	_, err = s.LoadChatHistories()
	assert.True(t, IsCode(err, RetCMediumError))
	_, err = s.SaveChatHistory([]Message{{Role: "user", Content: "c"}})
	assert.True(t, IsCode(err, RetCMediumError))
	assert.Contains(t, rec.of(notify.KindError), "failed to load chat histories")

	f.failReads = false
	histories, err := s.LoadChatHistories()
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, "a", histories[0].Messages[0].Content)
	assert.Equal(t, "b", histories[1].Messages[0].Content)
}
