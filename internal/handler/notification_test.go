package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/notify"
	"github.com/sumire/fixhub/internal/service"
)

type stubNotificationStore struct {
	recent []domain.Notification
	pages  map[int][]domain.Notification
}

func (s *stubNotificationStore) Create(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	return &n, nil
}

func (s *stubNotificationStore) Recent(_ context.Context, _ int64, _ int) ([]domain.Notification, error) {
	out := make([]domain.Notification, len(s.recent))
	copy(out, s.recent)
	return out, nil
}

func (s *stubNotificationStore) History(_ context.Context, _ int64, page, _ int) ([]domain.Notification, error) {
	out := make([]domain.Notification, len(s.pages[page]))
	copy(out, s.pages[page])
	return out, nil
}

func (s *stubNotificationStore) ToggleRead(_ context.Context, _, id int64) (*domain.Notification, error) {
	for _, n := range s.recent {
		if n.ID == id {
			n.Read = !n.Read
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func notificationRequest(t *testing.T, target, acceptLanguage string) echo.Context {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}

	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(userIDKey, int64(1))
	c.Set(localeKey, notify.ParseLocale(acceptLanguage))
	return c
}

func decodeEnvelope(t *testing.T, c echo.Context) Envelope {
	t.Helper()

	rec, ok := c.Response().Writer.(*httptest.ResponseRecorder)
	if !ok {
		t.Fatal("response writer is not a recorder")
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHistoryMetaReportsHasMore(t *testing.T) {
	full := make([]domain.Notification, 5)
	for i := range full {
		full[i] = domain.Notification{ID: int64(i + 1), UserID: 1, Kind: "issue_created"}
	}
	store := &stubNotificationStore{pages: map[int][]domain.Notification{
		1: full,
		2: full[:2],
	}}
	h := NewNotificationHandler(service.NewNotificationService(store, 20, 5))

	c := notificationRequest(t, "/api/v1/notifications/history?page=1", "")
	if err := h.History(c); err != nil {
		t.Fatalf("History: %v", err)
	}
	env := decodeEnvelope(t, c)
	if env.Meta == nil || !env.Meta.HasMore || env.Meta.Page != 1 {
		t.Errorf("meta = %+v, want page 1 with has_more", env.Meta)
	}

	c = notificationRequest(t, "/api/v1/notifications/history?page=2", "")
	if err := h.History(c); err != nil {
		t.Fatalf("History: %v", err)
	}
	env = decodeEnvelope(t, c)
	if env.Meta == nil || env.Meta.HasMore {
		t.Errorf("meta = %+v, want has_more false on a short page", env.Meta)
	}
}

func TestHistoryRejectsBadPage(t *testing.T) {
	h := NewNotificationHandler(service.NewNotificationService(&stubNotificationStore{}, 20, 5))

	for _, page := range []string{"0", "-3", "abc"} {
		c := notificationRequest(t, "/api/v1/notifications/history?page="+page, "")
		err := h.History(c)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("page %q: err = %v, want ValidationError", page, err)
			continue
		}
		if verr.Field != "page" {
			t.Errorf("page %q: field = %s, want page", page, verr.Field)
		}
	}
}

func TestRecentLocalizesMessages(t *testing.T) {
	canonical := `Your issue titled "Tropfender Hahn" has been created successfully.`
	store := &stubNotificationStore{recent: []domain.Notification{{
		ID:      1,
		UserID:  1,
		Kind:    "issue_created",
		Title:   "Tropfender Hahn",
		Message: canonical,
	}}}
	h := NewNotificationHandler(service.NewNotificationService(store, 20, 5))

	c := notificationRequest(t, "/api/v1/notifications/recent", "de-DE")
	if err := h.Recent(c); err != nil {
		t.Fatalf("Recent: %v", err)
	}

	env := decodeEnvelope(t, c)
	raw, _ := json.Marshal(env.Data)
	var items []domain.Notification
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	want := notify.Localize(notify.LocaleGerman, canonical)
	if items[0].Message != want {
		t.Errorf("message = %q, want %q", items[0].Message, want)
	}
	if store.recent[0].Message != canonical {
		t.Error("localization mutated the stored message")
	}
}
