package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/testinfra"
)

// TestRepositories_Integration runs the repository layer against a real
// Postgres started by testcontainers. Skipped with -short.
func TestRepositories_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	harness, err := testinfra.NewHarness(ctx)
	if err != nil {
		t.Fatalf("start harness: %v", err)
	}
	t.Cleanup(func() { harness.Close(context.Background()) })

	db := harness.DB()
	users := NewUserRepository(db)
	jobs := NewJobRepository(db)
	offers := NewOfferRepository(db)
	notifications := NewNotificationRepository(db)
	reviews := NewReviewRepository(db)

	seedUser := func(t *testing.T, n int) int64 {
		t.Helper()
		u, err := users.Upsert(ctx, domain.User{
			Provider:    domain.AuthProviderGitHub,
			ProviderID:  fmt.Sprintf("gh-%d-%d", n, time.Now().UnixNano()),
			Email:       fmt.Sprintf("user%d@example.com", n),
			DisplayName: fmt.Sprintf("User %d", n),
		})
		if err != nil {
			t.Fatalf("seed user: %v", err)
		}
		return u.ID
	}

	seedJob := func(t *testing.T, clientID int64) *domain.Job {
		t.Helper()
		job, err := jobs.Create(ctx, domain.Job{
			ClientID:    clientID,
			Title:       "Leaky faucet",
			Description: "Kitchen faucet drips",
			Categories:  []string{"plumbing", "repairs"},
			Urgency:     domain.UrgencyHigh,
			Street:      "Main St 1",
			PostalCode:  "12345",
		})
		if err != nil {
			t.Fatalf("seed job: %v", err)
		}
		return job
	}

	t.Run("job round trip", func(t *testing.T) {
		clientID := seedUser(t, 1)
		created := seedJob(t, clientID)

		if created.Status != domain.JobStatusOpen {
			t.Errorf("status = %s, want open", created.Status)
		}

		found, err := jobs.FindByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if len(found.Categories) != 2 || found.Categories[0] != "plumbing" {
			t.Errorf("categories = %v, want [plumbing repairs]", found.Categories)
		}

		open, err := jobs.ListOpen(ctx, "plumbing")
		if err != nil {
			t.Fatalf("ListOpen: %v", err)
		}
		seen := false
		for _, j := range open {
			if j.ID == created.ID {
				seen = true
			}
		}
		if !seen {
			t.Error("created job missing from open listing")
		}
	})

	t.Run("transition guard", func(t *testing.T) {
		clientID := seedUser(t, 2)
		job := seedJob(t, clientID)

		closed, err := jobs.Transition(ctx, job.ID, domain.EventClientClosed)
		if err != nil {
			t.Fatalf("close: %v", err)
		}
		if closed.Status != domain.JobStatusClosed {
			t.Errorf("status = %s, want closed", closed.Status)
		}

		if _, err := jobs.Transition(ctx, job.ID, domain.EventClientClosed); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("double close: err = %v, want ErrInvalidTransition", err)
		}

		reopened, err := jobs.Transition(ctx, job.ID, domain.EventClientReopened)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		if reopened.Status != domain.JobStatusReopened {
			t.Errorf("status = %s, want reopened", reopened.Status)
		}
		if reopened.ProfessionalID != nil {
			t.Error("reopen kept an assigned professional")
		}

		if _, err := jobs.Transition(ctx, 999999, domain.EventClientClosed); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("missing job: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("accept resolves competitors atomically", func(t *testing.T) {
		clientID := seedUser(t, 3)
		proA := seedUser(t, 4)
		proB := seedUser(t, 5)
		job := seedJob(t, clientID)

		offerA, _, err := offers.Create(ctx, domain.Offer{JobID: job.ID, ProfessionalID: proA, PriceCents: 15000, Terms: "next week"})
		if err != nil {
			t.Fatalf("create offer A: %v", err)
		}
		offerB, _, err := offers.Create(ctx, domain.Offer{JobID: job.ID, ProfessionalID: proB, PriceCents: 14000, Terms: "tomorrow"})
		if err != nil {
			t.Fatalf("create offer B: %v", err)
		}

		acc, err := offers.Accept(ctx, offerA.ID, clientID)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if acc.Job.Status != domain.JobStatusInProgress {
			t.Errorf("job status = %s, want in_progress", acc.Job.Status)
		}
		if acc.Job.ProfessionalID == nil || *acc.Job.ProfessionalID != proA {
			t.Errorf("assigned professional = %v, want %d", acc.Job.ProfessionalID, proA)
		}
		if len(acc.Rejected) != 1 || acc.Rejected[0].ID != offerB.ID {
			t.Fatalf("voided offers = %+v, want offer B", acc.Rejected)
		}

		if _, err := offers.Accept(ctx, offerB.ID, clientID); !errors.Is(err, domain.ErrJobNotAcceptingOffers) {
			t.Errorf("accept voided offer: err = %v, want ErrJobNotAcceptingOffers", err)
		}

		if _, _, err := offers.Create(ctx, domain.Offer{JobID: job.ID, ProfessionalID: proB, PriceCents: 9000}); !errors.Is(err, domain.ErrJobNotAcceptingOffers) {
			t.Errorf("offer on assigned job: err = %v, want ErrJobNotAcceptingOffers", err)
		}
	})

	t.Run("concurrent accepts pick one winner", func(t *testing.T) {
		clientID := seedUser(t, 6)
		job := seedJob(t, clientID)

		var offerIDs []int64
		for i := 0; i < 4; i++ {
			pro := seedUser(t, 10+i)
			offer, _, err := offers.Create(ctx, domain.Offer{JobID: job.ID, ProfessionalID: pro, PriceCents: 10000 + int64(i)})
			if err != nil {
				t.Fatalf("create offer %d: %v", i, err)
			}
			offerIDs = append(offerIDs, offer.ID)
		}

		var wg sync.WaitGroup
		results := make([]error, len(offerIDs))
		for i, id := range offerIDs {
			wg.Add(1)
			go func(i int, id int64) {
				defer wg.Done()
				_, err := offers.Accept(ctx, id, clientID)
				results[i] = err
			}(i, id)
		}
		wg.Wait()

		wins := 0
		for _, err := range results {
			if err == nil {
				wins++
				continue
			}
			if !errors.Is(err, domain.ErrJobNotAcceptingOffers) {
				t.Errorf("loser got %v, want ErrJobNotAcceptingOffers", err)
			}
		}
		if wins != 1 {
			t.Errorf("winners = %d, want exactly 1", wins)
		}

		final, err := jobs.FindByID(ctx, job.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if final.Status != domain.JobStatusInProgress {
			t.Errorf("final status = %s, want in_progress", final.Status)
		}
	})

	t.Run("reject ownership", func(t *testing.T) {
		clientID := seedUser(t, 20)
		stranger := seedUser(t, 21)
		pro := seedUser(t, 22)
		job := seedJob(t, clientID)

		offer, _, err := offers.Create(ctx, domain.Offer{JobID: job.ID, ProfessionalID: pro, PriceCents: 5000})
		if err != nil {
			t.Fatalf("create offer: %v", err)
		}

		if _, err := offers.Reject(ctx, offer.ID, stranger); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("stranger reject: err = %v, want ErrForbidden", err)
		}

		rejected, err := offers.Reject(ctx, offer.ID, clientID)
		if err != nil {
			t.Fatalf("Reject: %v", err)
		}
		if rejected.Status != domain.OfferStatusRejected {
			t.Errorf("status = %s, want rejected", rejected.Status)
		}

		if _, err := offers.Reject(ctx, offer.ID, clientID); !errors.Is(err, domain.ErrAlreadyResolved) {
			t.Errorf("double reject: err = %v, want ErrAlreadyResolved", err)
		}
	})

	t.Run("notification feed ordering and paging", func(t *testing.T) {
		userID := seedUser(t, 30)

		var ids []int64
		for i := 0; i < 7; i++ {
			n, err := notifications.Create(ctx, domain.Notification{
				UserID:  userID,
				Kind:    "issue_created",
				Title:   fmt.Sprintf("Job %d", i),
				Message: fmt.Sprintf(`Your issue titled "Job %d" has been created successfully.`, i),
			})
			if err != nil {
				t.Fatalf("create notification %d: %v", i, err)
			}
			ids = append(ids, n.ID)
		}

		// mark the two newest as read; they must sink below older unread items
		for _, id := range ids[5:] {
			if _, err := notifications.ToggleRead(ctx, userID, id); err != nil {
				t.Fatalf("ToggleRead: %v", err)
			}
		}

		recent, err := notifications.Recent(ctx, userID, 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(recent) != 7 {
			t.Fatalf("recent = %d items, want 7", len(recent))
		}
		for i, item := range recent {
			if i < 5 && item.Read {
				t.Errorf("item %d is read, want unread first", i)
			}
			if i >= 5 && !item.Read {
				t.Errorf("item %d is unread, want read items last", i)
			}
		}

		page1, err := notifications.History(ctx, userID, 1, 5)
		if err != nil {
			t.Fatalf("History page 1: %v", err)
		}
		if len(page1) != 5 {
			t.Errorf("page 1 = %d items, want 5", len(page1))
		}
		page2, err := notifications.History(ctx, userID, 2, 5)
		if err != nil {
			t.Fatalf("History page 2: %v", err)
		}
		if len(page2) != 2 {
			t.Errorf("page 2 = %d items, want 2", len(page2))
		}
		page3, err := notifications.History(ctx, userID, 3, 5)
		if err != nil {
			t.Fatalf("History page 3: %v", err)
		}
		if len(page3) != 0 {
			t.Errorf("page 3 = %d items, want empty", len(page3))
		}

		if _, err := notifications.ToggleRead(ctx, userID, 999999); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("toggle missing: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("one review per job", func(t *testing.T) {
		clientID := seedUser(t, 40)
		job := seedJob(t, clientID)

		if _, err := jobs.Transition(ctx, job.ID, domain.EventClientClosed); err != nil {
			t.Fatalf("close: %v", err)
		}

		review, err := reviews.Create(ctx, domain.Review{JobID: job.ID, ClientID: clientID, Rating: 5, Comment: "great"})
		if err != nil {
			t.Fatalf("create review: %v", err)
		}
		if review.Rating != 5 {
			t.Errorf("rating = %d, want 5", review.Rating)
		}

		if _, err := reviews.Create(ctx, domain.Review{JobID: job.ID, ClientID: clientID, Rating: 1}); !errors.Is(err, domain.ErrConflict) {
			t.Errorf("second review: err = %v, want ErrConflict", err)
		}

		found, err := reviews.FindByJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("FindByJob: %v", err)
		}
		if found.Comment != "great" {
			t.Errorf("comment = %q", found.Comment)
		}
	})
}
