package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/ValentinKolb/localdb/lib/codec"
	"github.com/ValentinKolb/localdb/lib/medium"
	"github.com/ValentinKolb/localdb/lib/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Tenant
// --------------------------------------------------------------------------

func TestTenantNamespacing(t *testing.T) {
	s, m, _ := newTestStore(t, "app1")

	require.NoError(t, s.Set("a", 1))

	raw, ok := rawValue(t, m, "app1:a")
	assert.True(t, ok)
	assert.Equal(t, "1", raw)

	_, ok = rawValue(t, m, "a")
	assert.False(t, ok, "logical key must not be written unprefixed")

	persisted, ok := rawValue(t, m, TenantKey)
	assert.True(t, ok)
	assert.Equal(t, "app1", persisted)
}

func TestTenantPersistsAcrossStores(t *testing.T) {
	m := medium.NewMemoryMedium()
	defer m.Close()

	first := NewStore(m, &Options{Tenant: "app1", Notifier: notify.NewNoopNotifier()})
	require.NoError(t, first.Set("greeting", "hello"))

	rec := &recorder{}
	second := NewStore(m, &Options{Notifier: rec})

	id, ok := second.Tenant()
	assert.True(t, ok)
	assert.Equal(t, "app1", id)
	assert.Equal(t, "hello", second.Get("greeting"))
	assert.Empty(t, rec.of(notify.KindWarning))
}

func TestMissingTenantWarnsOnce(t *testing.T) {
	s, _, rec := newTestStore(t, "")

	assert.Equal(t, []string{"no tenant configured, keys are not namespaced"}, rec.of(notify.KindWarning))

	// the store keeps working without namespacing
	require.NoError(t, s.Set("a", "x"))
	assert.Equal(t, "x", s.Get("a"))
	assert.Len(t, rec.of(notify.KindWarning), 1)

	_, ok := s.Tenant()
	assert.False(t, ok)
}

func TestSwitchTenantIsolatesData(t *testing.T) {
	s, m, _ := newTestStore(t, "t1")

	require.NoError(t, s.Set("k", "one"))
	require.NoError(t, s.SetTenant("t2"))
	assert.Nil(t, s.Get("k"))

	require.NoError(t, s.Set("k", "two"))
	require.NoError(t, s.SetTenant("t1"))
	assert.Equal(t, "one", s.Get("k"))

	// switching never migrates or clears
	raw, ok := rawValue(t, m, "t2:k")
	assert.True(t, ok)
	assert.Equal(t, "two", raw)
}

func TestSetTenantEmptyUnsets(t *testing.T) {
	s, m, _ := newTestStore(t, "t1")

	require.NoError(t, s.SetTenant(""))

	_, ok := s.Tenant()
	assert.False(t, ok)
	_, ok = rawValue(t, m, TenantKey)
	assert.False(t, ok)

	require.NoError(t, s.Set("plain", "v"))
	_, ok = rawValue(t, m, "plain")
	assert.True(t, ok)
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

func TestSetEncoding(t *testing.T) {
	s, m, _ := newTestStore(t, "t")

	require.NoError(t, s.Set("str", "hello"))
	raw, _ := rawValue(t, m, "t:str")
	assert.Equal(t, "hello", raw, "strings are stored verbatim")

	require.NoError(t, s.Set("obj", map[string]any{"a": 1}))
	raw, _ = rawValue(t, m, "t:obj")
	assert.Equal(t, "{\n  \"a\": 1\n}", raw)
}

func TestSetNilIsRejected(t *testing.T) {
	s, m, rec := newTestStore(t, "t")

	events := 0
	s.Watch("x", func(Event) { events++ })

	err := s.Set("x", nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, RetCEncodeError))
	assert.True(t, errors.Is(err, codec.ErrUndefinedValue))

	_, ok := rawValue(t, m, "t:x")
	assert.False(t, ok)
	assert.Zero(t, events)
	assert.Equal(t, []string{"failed to set value: x"}, rec.of(notify.KindError))
}

func TestRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	obj := map[string]any{"name": "ldb", "tags": []any{"a", "b"}, "nested": map[string]any{"n": 1.5}}
	require.NoError(t, s.Set("obj", obj))
	assert.Equal(t, obj, s.Get("obj"))

	list := []any{1.0, "two", true}
	require.NoError(t, s.Set("list", list))
	assert.Equal(t, list, s.Get("list"))

	require.NoError(t, s.Set("n", 5))
	assert.Equal(t, "5", s.Get("n"), "scalars are not parsed by the structured-only strategy")
	n, ok := GetAs[int](s, "n")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	require.NoError(t, s.Set("b", true))
	b, ok := GetAs[bool](s, "b")
	assert.True(t, ok)
	assert.True(t, b)

	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	require.NoError(t, s.Set("p", point{X: 1, Y: 2}))
	p, ok := GetAs[point](s, "p")
	assert.True(t, ok)
	assert.Equal(t, point{X: 1, Y: 2}, p)

	_, ok = GetAs[int](s, "missing")
	assert.False(t, ok)
	_, ok = GetAs[point](s, "list")
	assert.False(t, ok)
}

func TestGetMalformedStructuredText(t *testing.T) {
	s, m, rec := newTestStore(t, "t")

	require.NoError(t, m.SetRaw("t:broken", "{not json"))
	assert.Equal(t, "{not json", s.Get("broken"))

	require.NoError(t, m.SetRaw("t:padded", "  plain  "))
	assert.Equal(t, "plain", s.Get("padded"))

	assert.Empty(t, rec.of(notify.KindError))
}

func TestGetMissing(t *testing.T) {
	s, _, rec := newTestStore(t, "t")

	called := false
	_, err := s.AddMiddleware(DirGet, MiddlewareFunc(func(call *Call, next Handler) (any, error) {
		called = true
		return next(call)
	}))
	require.NoError(t, err)

	assert.Nil(t, s.Get("nope"))
	assert.False(t, called, "missing keys end the read before the chain")
	assert.Empty(t, rec.of(notify.KindError))
}

// --------------------------------------------------------------------------
// Middleware
// --------------------------------------------------------------------------

func TestMiddlewareOrder(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	var trace []string
	named := func(name string) Middleware {
		return MiddlewareFunc(func(call *Call, next Handler) (any, error) {
			trace = append(trace, name+">")
			v, err := next(call)
			trace = append(trace, "<"+name)
			return v, err
		})
	}
	_, err := s.AddMiddleware(DirSet, named("a"))
	require.NoError(t, err)
	_, err = s.AddMiddleware(DirSet, named("b"))
	require.NoError(t, err)
	s.Watch("k", func(Event) { trace = append(trace, "event") })

	require.NoError(t, s.Set("k", "v"))
	assert.Equal(t, []string{"a>", "b>", "event", "<b", "<a"}, trace)
}

func TestMiddlewareSeesPhysicalKeyAndProcessedValue(t *testing.T) {
	s, m, _ := newTestStore(t, "t")

	require.NoError(t, s.AddBusinessPipeline(DirSet, "name", func(v any) (any, error) {
		return strings.ToUpper(v.(string)), nil
	}))

	var seen Call
	_, err := s.AddMiddleware(DirSet, MiddlewareFunc(func(call *Call, next Handler) (any, error) {
		seen = *call
		call.Value = call.Value.(string) + "!"
		return next(call)
	}))
	require.NoError(t, err)

	require.NoError(t, s.Set("name", "ldb"))
	assert.Equal(t, Call{Direction: DirSet, Key: "t:name", Value: "LDB"}, seen)

	raw, _ := rawValue(t, m, "t:name")
	assert.Equal(t, "LDB!", raw)
}

func TestMiddlewareShortCircuit(t *testing.T) {
	s, m, _ := newTestStore(t, "t")

	events := 0
	s.Watch("k", func(Event) { events++ })

	id, err := s.AddMiddleware(DirSet, MiddlewareFunc(func(*Call, Handler) (any, error) {
		return nil, nil
	}))
	require.NoError(t, err)

	require.NoError(t, s.Set("k", "v"))
	_, ok := rawValue(t, m, "t:k")
	assert.False(t, ok, "a short circuited set is not written")
	assert.Zero(t, events, "a short circuited set is not notified")

	require.NoError(t, s.RemoveMiddleware(DirSet, id))
	require.NoError(t, s.Set("k", "v"))
	assert.Equal(t, 1, events)

	_, err = s.AddMiddleware(DirGet, MiddlewareFunc(func(*Call, Handler) (any, error) {
		return "override", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "override", s.Get("k"))
}

func TestMiddlewareError(t *testing.T) {
	s, m, rec := newTestStore(t, "t")
	boom := errors.New("boom")

	_, err := s.AddMiddleware(DirSet, MiddlewareFunc(func(*Call, Handler) (any, error) {
		return nil, boom
	}))
	require.NoError(t, err)

	err = s.Set("k", "v")
	require.Error(t, err)
	assert.True(t, IsCode(err, RetCInternalError))
	assert.ErrorIs(t, err, boom)
	_, ok := rawValue(t, m, "t:k")
	assert.False(t, ok)
	assert.Len(t, rec.of(notify.KindError), 1)
}

func TestGetMiddlewareWrapsResult(t *testing.T) {
	s, _, _ := newTestStore(t, "t")
	require.NoError(t, s.Set("k", "v"))

	_, err := s.AddMiddleware(DirGet, MiddlewareFunc(func(call *Call, next Handler) (any, error) {
		v, err := next(call)
		if err != nil {
			return nil, err
		}
		return v.(string) + "!", nil
	}))
	require.NoError(t, err)

	assert.Equal(t, "v!", s.Get("k"))
}

func TestInvalidDirection(t *testing.T) {
	s, _, _ := newTestStore(t, "t")
	noop := MiddlewareFunc(func(call *Call, next Handler) (any, error) { return next(call) })

	_, err := s.AddMiddleware("post", noop)
	assert.True(t, IsCode(err, RetCInvalidDirection))
	assert.True(t, IsCode(s.RemoveMiddleware("", "id"), RetCInvalidDirection))
	assert.True(t, IsCode(s.AddBusinessPipeline("GET", "k", func(v any) (any, error) { return v, nil }), RetCInvalidDirection))
	assert.True(t, IsCode(s.RemoveBusinessPipeline("put", "k"), RetCInvalidDirection))

	_, err = s.AddMiddleware(DirGet, nil)
	assert.True(t, IsCode(err, RetCInvalidOperation))
	assert.True(t, IsCode(s.AddBusinessPipeline(DirGet, "k", nil), RetCInvalidOperation))
}

// --------------------------------------------------------------------------
// Business Pipelines
// --------------------------------------------------------------------------

func TestBusinessPipelines(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	require.NoError(t, s.AddBusinessPipeline(DirGet, "count", func(v any) (any, error) {
		return "count=" + v.(string), nil
	}))
	require.NoError(t, s.Set("count", 3))
	require.NoError(t, s.Set("other", 3))

	assert.Equal(t, "count=3", s.Get("count"))
	assert.Equal(t, "3", s.Get("other"), "pipelines are bound to their key")

	// replacing is silent
	require.NoError(t, s.AddBusinessPipeline(DirGet, "count", func(v any) (any, error) {
		return "replaced", nil
	}))
	assert.Equal(t, "replaced", s.Get("count"))

	require.NoError(t, s.RemoveBusinessPipeline(DirGet, "count"))
	assert.Equal(t, "3", s.Get("count"))

	// removing a missing pipeline is a no-op
	require.NoError(t, s.RemoveBusinessPipeline(DirSet, "count"))
}

func TestSetPipelineRunsBeforeEncoding(t *testing.T) {
	s, m, _ := newTestStore(t, "t")

	require.NoError(t, s.AddBusinessPipeline(DirSet, "n", func(v any) (any, error) {
		return v.(int) * 2, nil
	}))
	require.NoError(t, s.Set("n", 5))

	raw, ok := rawValue(t, m, "t:n")
	require.True(t, ok)
	assert.Equal(t, "10", raw)
	assert.Equal(t, "10", s.Get("n"))
}

func TestBusinessPipelineError(t *testing.T) {
	s, m, rec := newTestStore(t, "t")
	boom := errors.New("rejected")

	require.NoError(t, s.AddBusinessPipeline(DirSet, "k", func(any) (any, error) { return nil, boom }))
	err := s.Set("k", "v")
	assert.True(t, IsCode(err, RetCInternalError))
	assert.ErrorIs(t, err, boom)
	_, ok := rawValue(t, m, "t:k")
	assert.False(t, ok)

	require.NoError(t, m.SetRaw("t:g", "v"))
	require.NoError(t, s.AddBusinessPipeline(DirGet, "g", func(any) (any, error) { return nil, boom }))
	assert.Nil(t, s.Get("g"))
	assert.Contains(t, rec.of(notify.KindError), "failed to get data")
}

// --------------------------------------------------------------------------
// Change Notification
// --------------------------------------------------------------------------

func TestWatch(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	var events []Event
	unsubscribe := s.Watch("k", func(e Event) { events = append(events, e) })

	require.NoError(t, s.Set("k", map[string]any{"v": 1}))
	s.Remove("k")
	require.NoError(t, s.Set("other", "x"))

	assert.Equal(t, []Event{
		{Key: "t:k", Value: map[string]any{"v": 1}},
		{Key: "t:k", Value: nil},
	}, events)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Set("k", "again"))
	assert.Len(t, events, 2)
}

func TestWatchResolvesAtSubscribeTime(t *testing.T) {
	s, _, _ := newTestStore(t, "t1")

	events := 0
	s.Watch("k", func(Event) { events++ })

	require.NoError(t, s.SetTenant("t2"))
	require.NoError(t, s.Set("k", "v"))
	assert.Zero(t, events)

	require.NoError(t, s.SetTenant("t1"))
	require.NoError(t, s.Set("k", "v"))
	assert.Equal(t, 1, events)
}

func TestListenerMayReenterStore(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	var seen any
	s.Watch("k", func(e Event) {
		// the write completed before the listener runs
		seen = s.Get("k")
		_ = s.Set("mirror", e.Value)
	})

	require.NoError(t, s.Set("k", "v"))
	assert.Equal(t, "v", seen)
	assert.Equal(t, "v", s.Get("mirror"))
}

func TestNotifyChange(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	var got []Event
	s.Watch("k", func(e Event) { got = append(got, e) })
	s.NotifyChange("t:k", "manual")
	s.NotifyChange("k", "wrong key")

	assert.Equal(t, []Event{{Key: "t:k", Value: "manual"}}, got)
}

// --------------------------------------------------------------------------
// Clear / Enumeration
// --------------------------------------------------------------------------

func TestClearWithTenant(t *testing.T) {
	s, m, _ := newTestStore(t, "t1")

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, m.SetRaw("t2:a", "other"))
	require.NoError(t, m.SetRaw("loose", "x"))

	keyEvents, clearEvents := 0, []Event{}
	s.Watch("a", func(Event) { keyEvents++ })
	s.WatchClear(func(e Event) { clearEvents = append(clearEvents, e) })

	s.Clear()

	assert.Equal(t, 0, s.Length())
	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{TenantKey, "loose", "t2:a"}, keys)

	assert.Zero(t, keyEvents, "per-key watchers are not told about bulk clears")
	assert.Equal(t, []Event{{Key: ClearKey, Value: nil}}, clearEvents)
}

func TestClearWithoutTenant(t *testing.T) {
	s, m, _ := newTestStore(t, "")

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, m.SetRaw("x:b", "2"))

	cleared := 0
	s.WatchClear(func(Event) { cleared++ })
	s.Clear()

	n, err := m.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, cleared)
}

func TestEmptyKeyDoesNotReachClearListeners(t *testing.T) {
	s, _, _ := newTestStore(t, "")

	var clearEvents, keyEvents []Event
	s.WatchClear(func(e Event) { clearEvents = append(clearEvents, e) })
	s.Watch("", func(e Event) { keyEvents = append(keyEvents, e) })

	require.NoError(t, s.Set("", "x"))
	s.Remove("")
	assert.Empty(t, clearEvents, "writes to the empty key are not clears")
	assert.Equal(t, []Event{{Key: "", Value: "x"}, {Key: "", Value: nil}}, keyEvents)

	s.Clear()
	assert.Len(t, clearEvents, 1)
	assert.Len(t, keyEvents, 2, "key watchers are not told about bulk clears")
}

func TestKeyAndLength(t *testing.T) {
	s, m, _ := newTestStore(t, "t")

	require.NoError(t, s.Set("c", "3"))
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, m.SetRaw("u:z", "foreign"))

	assert.Equal(t, 3, s.Length())
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())

	for i, want := range []string{"a", "b", "c"} {
		k, ok := s.Key(i)
		assert.True(t, ok)
		assert.Equal(t, want, k)
	}
	_, ok := s.Key(3)
	assert.False(t, ok)
	_, ok = s.Key(-1)
	assert.False(t, ok)
}

// --------------------------------------------------------------------------
// Failures / Logging
// --------------------------------------------------------------------------

func TestMediumFailures(t *testing.T) {
	f := &faultyMedium{IMedium: medium.NewMemoryMedium()}
	defer f.Close()
	rec := &recorder{}
	s := NewStore(f, &Options{Tenant: "t", Notifier: rec})
	require.NoError(t, s.Set("k", "v"))

	f.failReads, f.failWrites = true, true

	assert.Nil(t, s.Get("k"))
	err := s.Set("k", "w")
	assert.True(t, IsCode(err, RetCMediumError))
	assert.ErrorIs(t, err, errBroken)

	events := 0
	s.Watch("k", func(Event) { events++ })
	s.WatchClear(func(Event) { events++ })
	s.Remove("k")
	s.Clear()
	assert.Zero(t, events, "failed operations emit no events")

	assert.Zero(t, s.Length())
	_, ok := s.Key(0)
	assert.False(t, ok)

	assert.Equal(t, []string{
		"failed to get data",
		"failed to set value: k",
		"failed to remove value: k",
		"failed to clear data",
		"failed to count keys",
		"failed to list keys",
	}, rec.of(notify.KindError))
}

func TestEnableLogging(t *testing.T) {
	logs := useLogger(t)
	s, _, _ := newTestStore(t, "t")

	require.NoError(t, s.Set("k", "v"))
	assert.Zero(t, logs.count("INFO"))

	s.EnableLogging(true)
	require.NoError(t, s.Set("k", "v"))
	s.Get("k")
	assert.Equal(t, 2, logs.count("INFO"))

	s.EnableLogging(false)
	_ = s.Set("k", nil)
	assert.Equal(t, 2, logs.count("INFO"))
	assert.Equal(t, 1, logs.count("ERROR"), "errors are logged regardless of the trace flag")
}

func TestInfoAndClose(t *testing.T) {
	s, _, _ := newTestStore(t, "t")

	assert.Equal(t, medium.ImplMemory, s.Info().Type)
	require.NoError(t, s.Close())
	assert.Error(t, s.Set("k", "v"))
}
