package service

import (
	"context"
	"testing"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/notify"
)

type fakeNotificationStore struct {
	created []domain.Notification
	nextID  int64

	recentLimit int
	historyPage int
	historyLim  int
}

func (f *fakeNotificationStore) Create(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	f.nextID++
	n.ID = f.nextID
	f.created = append(f.created, n)
	out := n
	return &out, nil
}

func (f *fakeNotificationStore) Recent(_ context.Context, _ int64, limit int) ([]domain.Notification, error) {
	f.recentLimit = limit
	return nil, nil
}

func (f *fakeNotificationStore) History(_ context.Context, _ int64, page, limit int) ([]domain.Notification, error) {
	f.historyPage = page
	f.historyLim = limit
	return nil, nil
}

func (f *fakeNotificationStore) ToggleRead(_ context.Context, _, id int64) (*domain.Notification, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			f.created[i].Read = !f.created[i].Read
			n := f.created[i]
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestNotifyPersistsStructuredAndRendered(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, 20, 5)

	created, err := svc.Notify(context.Background(), 7, 3, notify.KindIssueCreated, "Leaky faucet")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if created.Kind != "issue_created" || created.Title != "Leaky faucet" {
		t.Errorf("structured fields = (%s, %s)", created.Kind, created.Title)
	}
	want := `Your issue titled "Leaky faucet" has been created successfully.`
	if created.Message != want {
		t.Errorf("message = %q, want %q", created.Message, want)
	}
	if created.JobID == nil || *created.JobID != 3 {
		t.Errorf("job id = %v, want 3", created.JobID)
	}
}

func TestNotifyRejectsUnknownKind(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, 20, 5)

	if _, err := svc.Notify(context.Background(), 7, 3, notify.Kind("job_exploded"), "t"); err == nil {
		t.Fatal("Notify accepted an unknown kind")
	}
	if len(store.created) != 0 {
		t.Error("unknown kind was persisted")
	}
}

func TestFeedQueriesUseConfiguredLimits(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, 30, 7)

	if _, err := svc.Recent(context.Background(), 1); err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if store.recentLimit != 30 {
		t.Errorf("recent limit = %d, want 30", store.recentLimit)
	}

	if _, err := svc.History(context.Background(), 1, 4); err != nil {
		t.Fatalf("History: %v", err)
	}
	if store.historyPage != 4 || store.historyLim != 7 {
		t.Errorf("history query = (page %d, limit %d), want (4, 7)", store.historyPage, store.historyLim)
	}
}

func TestNewNotificationServiceDefaults(t *testing.T) {
	svc := NewNotificationService(&fakeNotificationStore{}, 0, -1)
	if svc.PageSize() != 5 {
		t.Errorf("page size = %d, want default 5", svc.PageSize())
	}
	if svc.recentLimit != 20 {
		t.Errorf("recent limit = %d, want default 20", svc.recentLimit)
	}
}
