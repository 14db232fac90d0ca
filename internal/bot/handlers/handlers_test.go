package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/avdeeva/oporabot/internal/access"
	"github.com/avdeeva/oporabot/internal/bot/handlers"
	"github.com/avdeeva/oporabot/internal/config"
	"github.com/avdeeva/oporabot/internal/database"
	"github.com/avdeeva/oporabot/internal/history"
	"github.com/avdeeva/oporabot/internal/ratelimit"
	"github.com/avdeeva/oporabot/internal/tips"
)

const restrictedMessage = "Эта функция доступна только участницам группы поддержки."

// fakeTelegram stands in for the Telegram API and records the text of every
// sendMessage call.
type fakeTelegram struct {
	srv  *httptest.Server
	mu   sync.Mutex
	sent []string
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()

	f := &fakeTelegram{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			f.mu.Lock()
			f.sent = append(f.sent, messageText(r))
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":99}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeTelegram) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

// messageText extracts the "text" parameter from a sendMessage request,
// whichever encoding the client library used.
func messageText(r *http.Request) string {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var params struct {
			Text string `json:"text"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &params)
		return params.Text
	}
	return r.FormValue("text")
}

func newTestBot(t *testing.T, f *fakeTelegram) *tgbot.Bot {
	t.Helper()

	b, err := tgbot.New("test-token",
		tgbot.WithServerURL(f.srv.URL),
		tgbot.WithSkipGetMe(),
	)
	if err != nil {
		t.Fatalf("bot.New: %v", err)
	}
	return b
}

// recordingStore is an in-memory Store capturing archived messages.
type recordingStore struct {
	mu    sync.Mutex
	saved []database.Message
}

func (s *recordingStore) Ping(context.Context) error { return nil }

func (s *recordingStore) SaveMessage(_ context.Context, m *database.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *m)
	return nil
}

func (s *recordingStore) DeleteMessagesBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *recordingStore) RunMaintenance(context.Context) error { return nil }

func (s *recordingStore) archived() []database.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]database.Message, len(s.saved))
	copy(out, s.saved)
	return out
}

// stubGenerator returns a fixed reply and records the history it was given.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	queries [][]string
}

func (g *stubGenerator) Generate(_ context.Context, history []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, history)
	return g.reply
}

func (g *stubGenerator) calls() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([][]string, len(g.queries))
	copy(out, g.queries)
	return out
}

func newDeps(mode string, allowList map[int64]struct{}, gen *stubGenerator, store *recordingStore) handlers.HandlerDeps {
	return handlers.HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			AI: config.AIConfig{Mode: mode, Timeout: 5 * time.Second},
			Bot: config.BotConfig{
				MinReplyInterval:  time.Minute,
				RestrictedMessage: restrictedMessage,
			},
		},
		Store:     store,
		Generator: gen,
		Policy:    access.NewPolicy(allowList, mode == config.ModeGemini),
		Limiter:   ratelimit.NewLimiter(time.Minute),
		History:   history.NewBuffer(),
	}
}

func newMessageUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			Text: text,
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: -100200},
			Date: int(time.Now().Unix()),
		},
	}
}

func TestTipCommandStaticDeniedUser(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	deps := newDeps(config.ModeStatic, map[int64]struct{}{1: {}}, &stubGenerator{reply: "unused"}, store)

	handlers.NewTipHandler(deps)(context.Background(), b, newMessageUpdate(42, "/tip"))

	sent := f.sentTexts()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1: %v", len(sent), sent)
	}
	if sent[0] != restrictedMessage {
		t.Errorf("denied user got %q, want the fixed restriction message", sent[0])
	}
	if tips.Contains(sent[0]) {
		t.Error("denied user received a catalog tip")
	}
	if !deps.Limiter.CanReply(42) {
		t.Error("denial consumed the rate budget")
	}
}

func TestTipCommandStaticConsumesRateBudget(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	deps := newDeps(config.ModeStatic, map[int64]struct{}{42: {}}, &stubGenerator{reply: "unused"}, store)

	handlers.NewTipHandler(deps)(context.Background(), b, newMessageUpdate(42, "/tip"))

	sent := f.sentTexts()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1: %v", len(sent), sent)
	}
	if !tips.Contains(sent[0]) {
		t.Errorf("allowed user got %q, want a catalog tip", sent[0])
	}
	if deps.Limiter.CanReply(42) {
		t.Error("tip command did not consume the rate budget")
	}
}

func TestTipCommandGenerativeBypassesPolicyAndLimiter(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	// User 42 is outside the allow-list and already rate limited.
	deps := newDeps(config.ModeGemini, map[int64]struct{}{1: {}}, &stubGenerator{reply: "unused"}, store)
	deps.Limiter.MarkSent(42)

	handlers.NewTipHandler(deps)(context.Background(), b, newMessageUpdate(42, "/tip"))

	sent := f.sentTexts()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1: %v", len(sent), sent)
	}
	if !tips.Contains(sent[0]) {
		t.Errorf("bypass path got %q, want a catalog tip", sent[0])
	}
}

func TestTipCommandArchivesInboundAndOutbound(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	deps := newDeps(config.ModeGemini, nil, &stubGenerator{reply: "unused"}, store)

	handlers.NewTipHandler(deps)(context.Background(), b, newMessageUpdate(42, "/tip"))

	saved := store.archived()
	if len(saved) != 2 {
		t.Fatalf("archived %d messages, want 2: %v", len(saved), saved)
	}
	if saved[0].FromBot || saved[0].Content != "/tip" || saved[0].UserID != 42 {
		t.Errorf("inbound archive record = %+v, want the /tip command from user 42", saved[0])
	}
	if !saved[1].FromBot || !tips.Contains(saved[1].Content) {
		t.Errorf("outbound archive record = %+v, want a bot tip", saved[1])
	}
}

func TestMessagePipelineReply(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	gen := &stubGenerator{reply: "Я рядом и слышу вас."}
	deps := newDeps(config.ModeGemini, nil, gen, store)

	handlers.NewMessageHandler(deps)(context.Background(), b, newMessageUpdate(42, "мне грустно"))

	sent := f.sentTexts()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1: %v", len(sent), sent)
	}
	if sent[0] != gen.reply {
		t.Errorf("reply = %q, want generator output %q", sent[0], gen.reply)
	}

	calls := gen.calls()
	if len(calls) != 1 || len(calls[0]) != 1 || calls[0][0] != "мне грустно" {
		t.Errorf("generator history = %v, want the recorded inbound message", calls)
	}

	if deps.Limiter.CanReply(42) {
		t.Error("reply did not consume the rate budget")
	}

	saved := store.archived()
	if len(saved) != 2 {
		t.Fatalf("archived %d messages, want inbound and outbound: %v", len(saved), saved)
	}
	if saved[0].FromBot || saved[0].Content != "мне грустно" {
		t.Errorf("inbound archive record = %+v", saved[0])
	}
	if !saved[1].FromBot || saved[1].Content != gen.reply {
		t.Errorf("outbound archive record = %+v", saved[1])
	}
}

func TestMessagePipelineRateLimitedProducesNoReply(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	gen := &stubGenerator{reply: "unused"}
	deps := newDeps(config.ModeGemini, nil, gen, store)
	deps.Limiter.MarkSent(42)

	handlers.NewMessageHandler(deps)(context.Background(), b, newMessageUpdate(42, "ещё одно"))

	if sent := f.sentTexts(); len(sent) != 0 {
		t.Fatalf("rate-limited message produced a reply: %v", sent)
	}
	if len(gen.calls()) != 0 {
		t.Error("generator invoked for a rate-limited message")
	}

	// History is recorded before the limiter gate.
	if recent := deps.History.Recent(42); len(recent) != 1 || recent[0] != "ещё одно" {
		t.Errorf("Recent(42) = %v, want the rate-limited message recorded", recent)
	}
}

func TestMessagePipelineDeniedSenderIsSilent(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	gen := &stubGenerator{reply: "unused"}
	deps := newDeps(config.ModeGemini, map[int64]struct{}{1: {}}, gen, store)

	handlers.NewMessageHandler(deps)(context.Background(), b, newMessageUpdate(42, "привет"))

	if sent := f.sentTexts(); len(sent) != 0 {
		t.Fatalf("denied sender received a reply: %v", sent)
	}
	if len(gen.calls()) != 0 {
		t.Error("generator invoked for a denied sender")
	}
	if recent := deps.History.Recent(42); len(recent) != 0 {
		t.Errorf("history recorded for a denied sender: %v", recent)
	}
	if saved := store.archived(); len(saved) != 0 {
		t.Errorf("message from denied sender archived: %v", saved)
	}
}

func TestMessagePipelineStaticSkipsHistory(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	gen := &stubGenerator{reply: "unused"}
	deps := newDeps(config.ModeStatic, map[int64]struct{}{42: {}}, gen, store)

	handlers.NewMessageHandler(deps)(context.Background(), b, newMessageUpdate(42, "как дела"))

	if recent := deps.History.Recent(42); len(recent) != 0 {
		t.Errorf("static variant recorded history: %v", recent)
	}

	calls := gen.calls()
	if len(calls) != 1 || len(calls[0]) != 0 {
		t.Errorf("static variant passed history to the generator: %v", calls)
	}
}

func TestMessagePipelineIgnoresCommands(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	store := &recordingStore{}
	gen := &stubGenerator{reply: "unused"}
	deps := newDeps(config.ModeGemini, nil, gen, store)

	handlers.NewMessageHandler(deps)(context.Background(), b, newMessageUpdate(42, "/start"))

	if sent := f.sentTexts(); len(sent) != 0 {
		t.Fatalf("command produced a reply from the message handler: %v", sent)
	}
	if saved := store.archived(); len(saved) != 0 {
		t.Errorf("command archived by the message handler: %v", saved)
	}
}
