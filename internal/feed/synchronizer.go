// Package feed maintains a user session's merged notification view: the
// bounded recent set plus incrementally paginated history, deduplicated by
// identifier and kept in unread-first order.
package feed

import (
	"context"
	"sort"

	"github.com/sumire/fixhub/internal/domain"
)

// Source is the notification backend the synchronizer pulls from.
// service.NotificationService satisfies it.
type Source interface {
	Recent(ctx context.Context, userID int64) ([]domain.Notification, error)
	History(ctx context.Context, userID int64, page int) ([]domain.Notification, error)
	ToggleRead(ctx context.Context, userID, id int64) (*domain.Notification, error)
}

// Synchronizer owns one user session's notification feed. Operations are
// issued one at a time per session, so the synchronizer is deliberately not
// safe for concurrent use.
type Synchronizer struct {
	src    Source
	userID int64

	items    []domain.Notification
	nextPage int
	hasMore  bool
}

// NewSynchronizer creates a synchronizer for one user's session. The history
// cursor starts at page 1 and only ever moves forward.
func NewSynchronizer(src Source, userID int64) *Synchronizer {
	return &Synchronizer{
		src:      src,
		userID:   userID,
		nextPage: 1,
		hasMore:  true,
	}
}

// Items returns the current feed contents in display order.
func (s *Synchronizer) Items() []domain.Notification {
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// HasMore reports whether another history page may still yield new items.
func (s *Synchronizer) HasMore() bool {
	return s.hasMore
}

// LoadRecent replaces the in-memory feed with the server's current recent
// set, sorted unread first. The history cursor is not rewound: pages already
// consumed stay consumed.
func (s *Synchronizer) LoadRecent(ctx context.Context) error {
	items, err := s.src.Recent(ctx, s.userID)
	if err != nil {
		return err
	}

	s.items = items
	sortUnreadFirst(s.items)
	return nil
}

// LoadMoreHistory fetches the next history page and merges it into the feed.
// Duplicates are dropped by identifier before the merge. An empty page, or a
// page containing nothing new, quietly ends pagination: hasMore becomes
// false and the call is not an error. Once ended, further calls are no-ops.
func (s *Synchronizer) LoadMoreHistory(ctx context.Context) error {
	if !s.hasMore {
		return nil
	}

	page, err := s.src.History(ctx, s.userID, s.nextPage)
	if err != nil {
		return err
	}
	s.nextPage++

	if len(page) == 0 {
		s.hasMore = false
		return nil
	}

	known := make(map[int64]struct{}, len(s.items))
	for _, item := range s.items {
		known[item.ID] = struct{}{}
	}

	added := 0
	for _, item := range page {
		if _, dup := known[item.ID]; dup {
			continue
		}
		s.items = append(s.items, item)
		known[item.ID] = struct{}{}
		added++
	}

	if added == 0 {
		s.hasMore = false
		return nil
	}

	sortUnreadFirst(s.items)
	return nil
}

// ToggleRead flips the read flag remotely, mirrors the result locally and
// re-sorts. Last write wins; concurrent edits to the same notification are
// not merged.
func (s *Synchronizer) ToggleRead(ctx context.Context, id int64) error {
	updated, err := s.src.ToggleRead(ctx, s.userID, id)
	if err != nil {
		return err
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = updated.Read
			break
		}
	}

	sortUnreadFirst(s.items)
	return nil
}

// sortUnreadFirst puts unread items before read ones. The sort is stable:
// among items with equal read-state the existing relative order is
// preserved, never re-derived from timestamps.
func sortUnreadFirst(items []domain.Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		return !items[i].Read && items[j].Read
	})
}
