package services

import (
	"context"
	"testing"

	"sufganiot/internal/models"
)

func TestActivityLogAndRecent(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Activity.Log(models.ActivityVotingOpened, ActorAdmin, "Voting opened")
	}
	svc.Activity.Wait()

	got, err := svc.Activity.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Actor != ActorAdmin || got[0].Type != models.ActivityVotingOpened {
		t.Errorf("activity = %+v", got[0])
	}

	limited, err := svc.Activity.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d", len(limited))
	}
}

func TestActivityRecordedForOperations(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	c := newContest(t, svc)
	mustOpenVoting(t, svc)
	if _, err := svc.Voting.SubmitCategoryRanking(ctx, c.couples[0].ID, models.CategoryTaste,
		[]RankingInput{{SufganiaID: c.entries[1].ID, Rank: 1}}); err != nil {
		t.Fatal(err)
	}
	svc.Activity.Wait()

	all, err := svc.Activity.Recent(ctx, MaxActivityLimit+50)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[models.ActivityType]int{}
	for _, a := range all {
		counts[a.Type]++
	}
	if counts[models.ActivityCoupleCreated] != 3 || counts[models.ActivitySufganiaCreated] != 3 ||
		counts[models.ActivityVotingOpened] != 1 || counts[models.ActivityVote] != 1 {
		t.Errorf("activity counts = %v", counts)
	}
}
