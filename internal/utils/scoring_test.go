package utils

import (
	"testing"
	"time"

	"sufganiot/internal/models"
)

func threeEntries() Snapshot {
	return Snapshot{
		Entries: []models.Sufgania{
			{ID: "id-a", Name: "A", CoupleID: "owner-a"},
			{ID: "id-b", Name: "B", CoupleID: "owner-b"},
			{ID: "id-c", Name: "C", CoupleID: "owner-c"},
		},
		Couples: []models.Couple{
			{ID: "owner-a", Name: "Alice & Adam"},
			{ID: "owner-b", Name: "Bella & Ben"},
			{ID: "owner-c", Name: "Chen & Chloe"},
		},
	}
}

func vote(voter, entry string, c models.Category, rank int) models.Vote {
	return models.Vote{CoupleID: voter, SufganiaID: entry, Category: c, Rank: rank}
}

func byID(results []EntryResult) map[string]EntryResult {
	m := make(map[string]EntryResult, len(results))
	for _, r := range results {
		m[r.ID] = r
	}
	return m
}

func TestComputeRankingsSingleVoter(t *testing.T) {
	s := threeEntries()
	s.Votes = []models.Vote{
		vote("x", "id-a", models.CategoryTaste, 1),
		vote("x", "id-b", models.CategoryTaste, 2),
		vote("x", "id-c", models.CategoryTaste, 3),
	}

	got := byID(ComputeRankings(s))
	want := map[string]int{"id-a": 3, "id-b": 2, "id-c": 1}
	for id, taste := range want {
		if got[id].Scores.Taste != taste {
			t.Errorf("%s taste = %d, want %d", id, got[id].Scores.Taste, taste)
		}
	}
	if got["id-a"].CoupleName != "Alice & Adam" {
		t.Errorf("couple name = %q", got["id-a"].CoupleName)
	}
}

func TestComputeRankingsTieBreak(t *testing.T) {
	s := threeEntries()
	s.Votes = []models.Vote{
		vote("x", "id-a", models.CategoryTaste, 1),
		vote("x", "id-b", models.CategoryTaste, 2),
		vote("x", "id-c", models.CategoryTaste, 3),
		vote("y", "id-a", models.CategoryTaste, 2),
		vote("y", "id-b", models.CategoryTaste, 1),
		vote("y", "id-c", models.CategoryTaste, 3),
	}

	results := ComputeRankings(s)
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	wantOrder := []string{"id-a", "id-b", "id-c"}
	wantTotals := []int{5, 5, 2}
	for i, r := range results {
		if r.ID != wantOrder[i] {
			t.Errorf("position %d = %s, want %s", i, r.ID, wantOrder[i])
		}
		if r.Scores.Total != wantTotals[i] {
			t.Errorf("%s total = %d, want %d", r.ID, r.Scores.Total, wantTotals[i])
		}
		if r.Rank != i+1 {
			t.Errorf("%s rank = %d, want %d", r.ID, r.Rank, i+1)
		}
	}

	// 名称相同时退回 ID 排序
	s.Entries[1].Name = "A"
	results = ComputeRankings(s)
	if results[0].ID != "id-a" || results[1].ID != "id-b" {
		t.Errorf("tie on name should fall back to id, got %s, %s", results[0].ID, results[1].ID)
	}
}

func TestComputeRankingsTotalsAndOrdering(t *testing.T) {
	s := threeEntries()
	s.Votes = []models.Vote{
		vote("x", "id-a", models.CategoryTaste, 3),
		vote("x", "id-b", models.CategoryTaste, 1),
		vote("x", "id-c", models.CategoryTaste, 2),
		vote("x", "id-a", models.CategoryCreativity, 1),
		vote("x", "id-b", models.CategoryCreativity, 3),
		vote("x", "id-c", models.CategoryCreativity, 2),
		vote("y", "id-a", models.CategoryPresentation, 2),
		vote("y", "id-c", models.CategoryPresentation, 1),
	}

	results := ComputeRankings(s)
	for i, r := range results {
		sum := r.Scores.Taste + r.Scores.Creativity + r.Scores.Presentation
		if r.Scores.Total != sum {
			t.Errorf("%s total %d != category sum %d", r.ID, r.Scores.Total, sum)
		}
		if i > 0 && results[i-1].Scores.Total < r.Scores.Total {
			t.Errorf("leaderboard not non-increasing at %d", i)
		}
	}

	got := byID(results)
	if got["id-a"].TotalVotes != 3 {
		t.Errorf("id-a total votes = %d, want 3", got["id-a"].TotalVotes)
	}
	if got["id-b"].VoteCounts.Presentation != 0 || got["id-b"].AverageScores.Presentation != 0 {
		t.Errorf("entry without votes should average 0, got %+v", got["id-b"].AverageScores)
	}
	if got["id-c"].AverageScores.Presentation != 3 {
		t.Errorf("id-c presentation average = %v, want 3", got["id-c"].AverageScores.Presentation)
	}
}

func TestComputeRankingsAverages(t *testing.T) {
	s := threeEntries()
	s.Votes = []models.Vote{
		vote("x", "id-a", models.CategoryTaste, 1),
		vote("y", "id-a", models.CategoryTaste, 2),
	}
	got := byID(ComputeRankings(s))
	if got["id-a"].AverageScores.Taste != 2.5 {
		t.Errorf("average = %v, want 2.5", got["id-a"].AverageScores.Taste)
	}
}

func TestComputeRankingsEmpty(t *testing.T) {
	results := ComputeRankings(Snapshot{})
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

func TestComputeRankingsIgnoresUnknownEntries(t *testing.T) {
	s := threeEntries()
	s.Votes = []models.Vote{vote("x", "deleted", models.CategoryTaste, 1)}
	s.Comments = []models.Comment{{SufganiaID: "deleted", Text: "gone"}}
	for _, r := range ComputeRankings(s) {
		if r.TotalVotes != 0 || len(r.Comments) != 0 {
			t.Errorf("%s picked up orphaned data: %+v", r.ID, r)
		}
	}
}

func TestComputeRankingsComments(t *testing.T) {
	now := time.Now()
	s := threeEntries()
	s.Comments = []models.Comment{
		{ID: "2", CoupleID: "owner-c", SufganiaID: "id-a", Text: "second", CreatedAt: now.Add(time.Minute)},
		{ID: "1", CoupleID: "owner-b", SufganiaID: "id-a", Text: "first", CreatedAt: now},
	}
	got := byID(ComputeRankings(s))
	comments := got["id-a"].Comments
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].Text != "first" || comments[0].VoterID != "owner-b" {
		t.Errorf("first comment = %+v", comments[0])
	}
	if got["id-b"].Comments == nil {
		t.Error("comments should be an empty slice, not nil")
	}
}

func TestComputeCategoryRankings(t *testing.T) {
	s := threeEntries()
	s.Votes = []models.Vote{
		vote("x", "id-a", models.CategoryTaste, 1),
		vote("x", "id-b", models.CategoryTaste, 2),
		vote("x", "id-c", models.CategoryTaste, 3),
		vote("x", "id-c", models.CategoryCreativity, 1),
		vote("x", "id-b", models.CategoryCreativity, 2),
		vote("x", "id-a", models.CategoryCreativity, 3),
		vote("y", "id-a", models.CategoryPresentation, 1),
	}

	overall := byID(ComputeRankings(s))
	results := ComputeCategoryRankings(s, models.CategoryCreativity)
	wantOrder := []string{"id-c", "id-b", "id-a"}
	for i, r := range results {
		if r.ID != wantOrder[i] {
			t.Errorf("position %d = %s, want %s", i, r.ID, wantOrder[i])
		}
		if r.CategoryRank != i+1 {
			t.Errorf("%s categoryRank = %d, want %d", r.ID, r.CategoryRank, i+1)
		}
		if r.Rank != overall[r.ID].Rank {
			t.Errorf("%s rank changed from %d to %d", r.ID, overall[r.ID].Rank, r.Rank)
		}
	}
}

func TestPointsMonotonic(t *testing.T) {
	n := 5
	for rank := 1; rank < n; rank++ {
		if Points(n, rank) <= Points(n, rank+1) {
			t.Errorf("Points(%d,%d)=%d not greater than Points(%d,%d)=%d",
				n, rank, Points(n, rank), n, rank+1, Points(n, rank+1))
		}
	}
	if Points(n, 1) != n || Points(n, n) != 1 {
		t.Errorf("boundary points wrong: %d, %d", Points(n, 1), Points(n, n))
	}
}
