package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/soyeahso/assistloop/internal/hooks"
	"github.com/soyeahso/assistloop/internal/logging"
	"github.com/soyeahso/assistloop/internal/observability"
	"github.com/soyeahso/assistloop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBridge(t *testing.T, seed map[string]string, opts ...Option) (*Bridge, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore(seed)
	return NewBridge(s, logging.New(nil, "silent"), opts...), s
}

// failingStore fails every call after the first n successful writes.
type failingStore struct {
	*store.MemoryStore
	writesLeft int
	err        error
}

func (f *failingStore) Lookup(context.Context, string) (string, bool, error) {
	return "", false, f.err
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.writesLeft == 0 {
		return f.err
	}
	f.writesLeft--
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.writesLeft == 0 {
		return f.err
	}
	f.writesLeft--
	return f.MemoryStore.Delete(ctx, key)
}

// --- Read paths ---

func TestLoadFormValues_AllUnset(t *testing.T) {
	b, _ := testBridge(t, nil)

	got := b.LoadFormValues(context.Background())
	assert.Equal(t, WidgetConfig{
		AgentID:        "",
		Enabled:        false,
		Position:       "right",
		WidgetURL:      "",
		ShowOnAllPages: true,
	}, got)
}

func TestLoadRenderConfig_AllUnset(t *testing.T) {
	b, _ := testBridge(t, nil)

	got := b.LoadRenderConfig(context.Background())
	assert.Equal(t, WidgetConfig{
		AgentID:        "",
		Enabled:        false,
		Position:       "right",
		WidgetURL:      "https://assistloop.ai/assistloop-widget.js",
		ShowOnAllPages: true,
	}, got)
}

func TestLoadRenderConfig_PartiallySet(t *testing.T) {
	b, _ := testBridge(t, map[string]string{
		KeyEnabled:  "True",
		KeyPosition: "left",
	})

	got := b.LoadRenderConfig(context.Background())
	assert.Equal(t, WidgetConfig{
		AgentID:        "",
		Enabled:        true,
		Position:       "left",
		WidgetURL:      DefaultWidgetURL,
		ShowOnAllPages: true,
	}, got)
}

func TestLoadRenderConfig_StoredEmptyURLFallsBack(t *testing.T) {
	b, _ := testBridge(t, map[string]string{KeyWidgetURL: ""})

	assert.Equal(t, DefaultWidgetURL, b.LoadRenderConfig(context.Background()).WidgetURL)
	assert.Equal(t, "", b.LoadFormValues(context.Background()).WidgetURL)
}

func TestLoad_CustomURL(t *testing.T) {
	b, _ := testBridge(t, map[string]string{KeyWidgetURL: "https://cdn.example.com/w.js"})

	assert.Equal(t, "https://cdn.example.com/w.js", b.LoadRenderConfig(context.Background()).WidgetURL)
	assert.Equal(t, "https://cdn.example.com/w.js", b.LoadFormValues(context.Background()).WidgetURL)
}

func TestLoad_PositionNotValidated(t *testing.T) {
	b, _ := testBridge(t, map[string]string{KeyPosition: "top"})
	assert.Equal(t, "top", b.LoadFormValues(context.Background()).Position)
}

func TestLoad_StoreErrorsDegradeToDefaults(t *testing.T) {
	fs := &failingStore{MemoryStore: store.NewMemoryStore(nil), err: errors.New("db down")}
	m := observability.NewMetrics()
	b := NewBridge(fs, logging.New(nil, "silent"), WithMetrics(m))

	assert.Equal(t, WidgetConfig{Position: "right", ShowOnAllPages: true}, b.LoadFormValues(context.Background()))
	assert.Equal(t, DefaultWidgetURL, b.LoadRenderConfig(context.Background()).WidgetURL)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsReads.WithLabelValues("form")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsReads.WithLabelValues("render")))
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"True", true},
		{"true", false},
		{"TRUE", false},
		{"False", false},
		{"false", false},
		{"1", false},
		{"0", false},
		{"", false},
		{" True", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFlag(tt.raw))
		})
	}
}

func TestBooleanCoercionThroughStore(t *testing.T) {
	for _, raw := range []string{"false", "0", "", "true", "yes"} {
		t.Run(raw, func(t *testing.T) {
			b, _ := testBridge(t, map[string]string{KeyEnabled: raw, KeyShowOnAllPages: raw})
			got := b.LoadFormValues(context.Background())
			assert.False(t, got.Enabled)
			assert.False(t, got.ShowOnAllPages)
		})
	}
}

// --- Save ---

func TestSave_RoundTrip(t *testing.T) {
	records := []WidgetConfig{
		{AgentID: "abc-123", Enabled: true, Position: "left", WidgetURL: "https://cdn.example.com/w.js", ShowOnAllPages: false},
		{AgentID: "", Enabled: false, Position: "right", WidgetURL: "", ShowOnAllPages: true},
		{AgentID: "9f1c", Enabled: true, Position: "right", WidgetURL: "", ShowOnAllPages: false},
		{AgentID: "  spaced  ", Enabled: false, Position: "left", WidgetURL: "x", ShowOnAllPages: true},
	}

	for _, r := range records {
		b, _ := testBridge(t, nil)
		ctx := context.Background()
		require.NoError(t, b.Save(ctx, r))
		assert.Equal(t, r, b.LoadFormValues(ctx))
	}
}

func TestSave_StoresLiterals(t *testing.T) {
	b, s := testBridge(t, nil)

	require.NoError(t, b.Save(context.Background(), WidgetConfig{
		AgentID:        "abc-123",
		Enabled:        true,
		Position:       "left",
		ShowOnAllPages: false,
	}))

	assert.Equal(t, map[string]string{
		KeyAgentID:        "abc-123",
		KeyEnabled:        "True",
		KeyPosition:       "left",
		KeyShowOnAllPages: "False",
	}, s.Snapshot())
}

func TestSave_EmptyStringsUnsetKeys(t *testing.T) {
	b, s := testBridge(t, map[string]string{
		KeyAgentID:   "old",
		KeyWidgetURL: "https://old.example.com/w.js",
	})

	require.NoError(t, b.Save(context.Background(), WidgetConfig{Position: "right"}))

	snap := s.Snapshot()
	assert.NotContains(t, snap, KeyAgentID)
	assert.NotContains(t, snap, KeyWidgetURL)
	assert.Equal(t, DefaultWidgetURL, b.LoadRenderConfig(context.Background()).WidgetURL)
}

func TestSave_Idempotent(t *testing.T) {
	r := WidgetConfig{AgentID: "abc", Enabled: true, Position: "left", ShowOnAllPages: true}

	once, _ := testBridge(t, nil)
	require.NoError(t, once.Save(context.Background(), r))

	twice, _ := testBridge(t, nil)
	require.NoError(t, twice.Save(context.Background(), r))
	require.NoError(t, twice.Save(context.Background(), r))

	assert.Equal(t, once.LoadFormValues(context.Background()), twice.LoadFormValues(context.Background()))
	assert.Equal(t, once.LoadRenderConfig(context.Background()), twice.LoadRenderConfig(context.Background()))
}

func TestSave_LeavesOtherParamsAlone(t *testing.T) {
	b, s := testBridge(t, map[string]string{"web.base.url": "https://shop.example.com"})

	require.NoError(t, b.Save(context.Background(), WidgetConfig{Position: "right"}))
	assert.Equal(t, "https://shop.example.com", s.Snapshot()["web.base.url"])
}

func TestSave_PartialFailureKeepsEarlierWrites(t *testing.T) {
	fs := &failingStore{MemoryStore: store.NewMemoryStore(nil), writesLeft: 2, err: errors.New("disk full")}
	m := observability.NewMetrics()
	b := NewBridge(fs, logging.New(nil, "silent"), WithMetrics(m))

	err := b.Save(context.Background(), WidgetConfig{AgentID: "abc", Enabled: true, Position: "left"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyPosition)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, map[string]string{KeyAgentID: "abc", KeyEnabled: "True"}, fs.Snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsSaves.WithLabelValues("error")))
}

func TestSave_HooksRejectAndNotify(t *testing.T) {
	hm := hooks.NewManager(logging.New(nil, "silent"))
	m := observability.NewMetrics()
	b, s := testBridge(t, nil, WithHooks(hm), WithMetrics(m))

	hm.On(hooks.EventSettingsSaving, "require-agent", func(_ context.Context, p hooks.Payload) error {
		if p.Data["agent_id"] == "" {
			return errors.New("agent id required")
		}
		return nil
	})

	var saved map[string]any
	hm.On(hooks.EventSettingsSaved, "capture", func(_ context.Context, p hooks.Payload) error {
		saved = p.Data
		return nil
	})

	err := b.Save(context.Background(), WidgetConfig{Enabled: true, Position: "left"})
	require.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "agent id required")
	assert.Empty(t, s.Snapshot(), "rejected save writes nothing")
	assert.Nil(t, saved)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsSaves.WithLabelValues("rejected")))

	require.NoError(t, b.Save(context.Background(), WidgetConfig{AgentID: "abc-123", Enabled: true, Position: "left"}))
	assert.Equal(t, "abc-123", saved["agent_id"])
	assert.Equal(t, true, saved["enabled"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsSaves.WithLabelValues("ok")))
}

func TestParams(t *testing.T) {
	b, _ := testBridge(t, map[string]string{
		KeyEnabled:     "True",
		"web.base.url": "https://shop.example.com",
	})

	params, err := b.Params(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []store.Param{{Key: KeyEnabled, Value: "True"}}, params)
}

// --- Visibility ---

func TestVisible(t *testing.T) {
	tests := []struct {
		name      string
		cfg       WidgetConfig
		pageOptIn bool
		want      bool
	}{
		{"disabled", WidgetConfig{AgentID: "a", ShowOnAllPages: true}, true, false},
		{"no agent", WidgetConfig{Enabled: true, ShowOnAllPages: true}, true, false},
		{"all pages", WidgetConfig{AgentID: "a", Enabled: true, ShowOnAllPages: true}, false, true},
		{"page opted in", WidgetConfig{AgentID: "a", Enabled: true}, true, true},
		{"page not opted in", WidgetConfig{AgentID: "a", Enabled: true}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Visible(tt.pageOptIn))
		})
	}
}

func TestFieldsCoverEveryKey(t *testing.T) {
	var keys []string
	for _, f := range Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{KeyAgentID, KeyEnabled, KeyPosition, KeyWidgetURL, KeyShowOnAllPages}, keys)
	assert.Equal(t, "Bottom Right", Positions[0].Label)
}
