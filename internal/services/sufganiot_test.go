package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sufganiot/internal/models"
)

// 最小 PNG 头，足够通过内容类型检测
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestCreateSufganiaOnePerCouple(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	owner := mustCouple(t, svc, "Owner")

	entry := mustEntry(t, svc, owner, "  Pistachio  ")
	if entry.Name != "Pistachio" || entry.Couple == nil || entry.Couple.Name != "Owner" {
		t.Errorf("entry = %+v", entry)
	}

	_, err := svc.Sufganiot.Create(ctx, SufganiaInput{CoupleID: owner.ID, Name: "Second"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second entry err = %v, want ErrConflict", err)
	}
	_, err = svc.Sufganiot.Create(ctx, SufganiaInput{CoupleID: "missing", Name: "Orphan"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing owner err = %v, want ErrNotFound", err)
	}
	_, err = svc.Sufganiot.Create(ctx, SufganiaInput{CoupleID: owner.ID, Name: "x", Description: strings.Repeat("d", 501)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("long description err = %v, want ErrValidation", err)
	}
}

func TestUpdateSufgania(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	c := newContest(t, svc)
	free := mustCouple(t, svc, "Free")

	updated, err := svc.Sufganiot.Update(ctx, c.entries[0].ID, SufganiaInput{Name: "Renamed", Description: "jam"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Renamed" || updated.Description != "jam" || updated.CoupleID != c.couples[0].ID {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.Sufganiot.Update(ctx, c.entries[0].ID, SufganiaInput{CoupleID: c.couples[1].ID, Name: "x"}); !errors.Is(err, ErrConflict) {
		t.Errorf("move onto taken couple err = %v", err)
	}
	moved, err := svc.Sufganiot.Update(ctx, c.entries[0].ID, SufganiaInput{CoupleID: free.ID, Name: "Moved"})
	if err != nil || moved.CoupleID != free.ID {
		t.Fatalf("move = %+v, %v", moved, err)
	}
}

func TestUpdateSufganiaOwnerDropsOwnVotes(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	c := newContest(t, svc)
	free := mustCouple(t, svc, "Free")
	entry := c.entries[0]
	mustOpenVoting(t, svc)

	ballot := []RankingInput{{SufganiaID: entry.ID, Rank: 1}}
	for _, voter := range []string{free.ID, c.couples[1].ID} {
		if _, err := svc.Voting.SubmitCategoryRanking(ctx, voter, models.CategoryTaste, ballot); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := svc.Comments.SubmitComment(ctx, free.ID, entry.ID, "nice glaze"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Sufganiot.Update(ctx, entry.ID, SufganiaInput{CoupleID: free.ID, Name: entry.Name}); err != nil {
		t.Fatal(err)
	}

	if n := countVotes(t, svc, free.ID); n != 0 {
		t.Errorf("new owner still holds %d vote(s) on its own entry", n)
	}
	comments, err := svc.Comments.ForSufgania(ctx, entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 {
		t.Errorf("new owner's comment kept: %+v", comments)
	}
	if n := countVotes(t, svc, c.couples[1].ID); n != 1 {
		t.Errorf("other voter's votes = %d, want 1", n)
	}

	// 旧主人现在可以给它投票
	if _, err := svc.Voting.SubmitCategoryRanking(ctx, c.couples[0].ID, models.CategoryTaste, ballot); err != nil {
		t.Errorf("previous owner vote: %v", err)
	}
}

func TestAttachPhotoAndDelete(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	entry := mustEntry(t, svc, mustCouple(t, svc, "Owner"), "Photo Donut")

	if _, err := svc.Sufganiot.AttachPhoto(ctx, entry.ID, strings.NewReader("plain text")); !errors.Is(err, ErrValidation) {
		t.Errorf("text upload err = %v", err)
	}
	if _, err := svc.Sufganiot.AttachPhoto(ctx, entry.ID, bytes.NewReader(make([]byte, 0))); !errors.Is(err, ErrValidation) {
		t.Errorf("empty upload err = %v", err)
	}
	big := append(append([]byte{}, pngHeader...), make([]byte, svc.Photos.MaxSize())...)
	if _, err := svc.Sufganiot.AttachPhoto(ctx, entry.ID, bytes.NewReader(big)); !errors.Is(err, ErrValidation) {
		t.Errorf("oversize upload err = %v", err)
	}

	first, err := svc.Sufganiot.AttachPhoto(ctx, entry.ID, bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(first.PhotoURL, PhotoURLPrefix+"/") || !strings.HasSuffix(first.PhotoURL, ".png") {
		t.Fatalf("photo url = %q", first.PhotoURL)
	}
	firstPath := filepath.Join(svc.Photos.Dir(), filepath.Base(first.PhotoURL))

	second, err := svc.Sufganiot.AttachPhoto(ctx, entry.ID, bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
		t.Errorf("replaced photo should be removed, stat err = %v", err)
	}

	gallery, err := svc.Sufganiot.Gallery(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(gallery) != 1 || gallery[0].PhotoURL != second.PhotoURL || gallery[0].CoupleName != "Owner" {
		t.Errorf("gallery = %+v", gallery)
	}

	if err := svc.Sufganiot.Delete(ctx, entry.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(svc.Photos.Dir(), filepath.Base(second.PhotoURL))); !os.IsNotExist(err) {
		t.Errorf("photo should be removed with its entry, stat err = %v", err)
	}
	if err := svc.Sufganiot.Delete(ctx, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestPhotoRemoveIgnoresForeignURLs(t *testing.T) {
	p := NewPhotoStorage(t.TempDir(), 1024)
	for _, url := range []string{"", "https://cdn.example.com/a.png", PhotoURLPrefix + "/missing.png"} {
		if err := p.Remove(url); err != nil {
			t.Errorf("Remove(%q) = %v", url, err)
		}
	}
}
