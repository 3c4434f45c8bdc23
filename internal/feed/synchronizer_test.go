package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/sumire/fixhub/internal/domain"
)

type fakeSource struct {
	recent  []domain.Notification
	pages   map[int][]domain.Notification
	err     error
	history []int
}

func (f *fakeSource) Recent(_ context.Context, _ int64) ([]domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Notification, len(f.recent))
	copy(out, f.recent)
	return out, nil
}

func (f *fakeSource) History(_ context.Context, _ int64, page int) ([]domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.history = append(f.history, page)
	out := make([]domain.Notification, len(f.pages[page]))
	copy(out, f.pages[page])
	return out, nil
}

func (f *fakeSource) ToggleRead(_ context.Context, _ int64, id int64) (*domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.recent {
		if f.recent[i].ID == id {
			f.recent[i].Read = !f.recent[i].Read
			n := f.recent[i]
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func n(id int64, read bool) domain.Notification {
	return domain.Notification{ID: id, UserID: 1, Kind: "issue_created", Read: read}
}

func ids(items []domain.Notification) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadRecentSortsUnreadFirst(t *testing.T) {
	src := &fakeSource{recent: []domain.Notification{
		n(1, true), n(2, false), n(3, true), n(4, false),
	}}
	s := NewSynchronizer(src, 1)

	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}

	got := ids(s.Items())
	want := []int64{2, 4, 1, 3}
	if !equalIDs(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestLoadMoreHistoryDeduplicates(t *testing.T) {
	src := &fakeSource{
		recent: []domain.Notification{n(10, false), n(9, false)},
		pages: map[int][]domain.Notification{
			1: {n(10, false), n(9, false), n(8, false)},
		},
	}
	s := NewSynchronizer(src, 1)

	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("LoadMoreHistory: %v", err)
	}

	got := ids(s.Items())
	want := []int64{10, 9, 8}
	if !equalIDs(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestLoadMoreHistoryAdvancesCursor(t *testing.T) {
	src := &fakeSource{pages: map[int][]domain.Notification{
		1: {n(5, true)},
		2: {n(4, true)},
	}}
	s := NewSynchronizer(src, 1)

	for i := 0; i < 2; i++ {
		if err := s.LoadMoreHistory(context.Background()); err != nil {
			t.Fatalf("LoadMoreHistory: %v", err)
		}
	}

	if !equalIDs(ids(s.Items()), []int64{5, 4}) {
		t.Errorf("items = %v, want [5 4]", ids(s.Items()))
	}
	if len(src.history) != 2 || src.history[0] != 1 || src.history[1] != 2 {
		t.Errorf("pages requested = %v, want [1 2]", src.history)
	}
}

func TestLoadMoreHistoryEmptyPageEndsPagination(t *testing.T) {
	src := &fakeSource{pages: map[int][]domain.Notification{
		1: {n(3, true)},
	}}
	s := NewSynchronizer(src, 1)

	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if !s.HasMore() {
		t.Fatal("hasMore = false after a productive page")
	}

	// page 2 is empty
	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if s.HasMore() {
		t.Error("hasMore = true after an empty page")
	}

	// further calls must not hit the source again
	before := len(src.history)
	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("after exhaustion: %v", err)
	}
	if len(src.history) != before {
		t.Error("LoadMoreHistory fetched after exhaustion")
	}
}

func TestLoadMoreHistoryAllDuplicatesEndsPagination(t *testing.T) {
	src := &fakeSource{
		recent: []domain.Notification{n(7, false), n(6, false)},
		pages: map[int][]domain.Notification{
			1: {n(7, false), n(6, false)},
		},
	}
	s := NewSynchronizer(src, 1)

	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("LoadMoreHistory: %v", err)
	}

	if s.HasMore() {
		t.Error("hasMore = true after a page of only duplicates")
	}
	if len(s.Items()) != 2 {
		t.Errorf("items = %v, want the original 2", ids(s.Items()))
	}
}

func TestLoadRecentDoesNotRewindCursor(t *testing.T) {
	src := &fakeSource{
		recent: []domain.Notification{n(9, false)},
		pages: map[int][]domain.Notification{
			1: {n(8, true)},
			2: {n(7, true)},
		},
	}
	s := NewSynchronizer(src, 1)

	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("LoadMoreHistory: %v", err)
	}
	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if err := s.LoadMoreHistory(context.Background()); err != nil {
		t.Fatalf("LoadMoreHistory: %v", err)
	}

	if len(src.history) != 2 || src.history[1] != 2 {
		t.Errorf("pages requested = %v, want [1 2]", src.history)
	}
}

func TestToggleReadMirrorsAndReorders(t *testing.T) {
	src := &fakeSource{recent: []domain.Notification{
		n(1, false), n(2, false), n(3, true),
	}}
	s := NewSynchronizer(src, 1)

	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}
	if err := s.ToggleRead(context.Background(), 1); err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}

	got := ids(s.Items())
	want := []int64{2, 1, 3}
	if !equalIDs(got, want) {
		t.Errorf("items after mark-read = %v, want %v", got, want)
	}

	if err := s.ToggleRead(context.Background(), 3); err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	got = ids(s.Items())
	want = []int64{2, 3, 1}
	if !equalIDs(got, want) {
		t.Errorf("items after mark-unread = %v, want %v", got, want)
	}
}

func TestSourceErrorLeavesStateIntact(t *testing.T) {
	src := &fakeSource{recent: []domain.Notification{n(1, false)}}
	s := NewSynchronizer(src, 1)

	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}

	src.err = errors.New("backend down")
	if err := s.LoadMoreHistory(context.Background()); err == nil {
		t.Fatal("LoadMoreHistory returned nil, want error")
	}
	if !s.HasMore() {
		t.Error("hasMore flipped on a failed fetch")
	}
	if len(s.Items()) != 1 {
		t.Errorf("items changed on a failed fetch: %v", ids(s.Items()))
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	src := &fakeSource{recent: []domain.Notification{n(1, false)}}
	s := NewSynchronizer(src, 1)

	if err := s.LoadRecent(context.Background()); err != nil {
		t.Fatalf("LoadRecent: %v", err)
	}

	items := s.Items()
	items[0].Read = true

	if s.Items()[0].Read {
		t.Error("mutating the returned slice leaked into the feed")
	}
}
