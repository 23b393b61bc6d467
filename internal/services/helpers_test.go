package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sufganiot/internal/config"
	"sufganiot/internal/db"
	"sufganiot/internal/models"
)

// newTestServices 每个测试一个独立的 SQLite 文件库
func newTestServices(t *testing.T) *Services {
	t.Helper()

	dir := t.TempDir()
	conn, err := db.Open("sqlite://"+filepath.Join(dir, "test.db"), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AdminPassword: "letmein",
		UploadDir:     filepath.Join(dir, "uploads"),
		MaxFileSize:   64 * 1024,
		CacheTTL:      time.Minute,
	}
	svc, err := New(conn, cfg)
	if err != nil {
		t.Fatalf("services.New: %v", err)
	}

	t.Cleanup(func() {
		svc.Activity.Wait()
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return svc
}

func mustCouple(t *testing.T, svc *Services, name string) *models.Couple {
	t.Helper()
	c, err := svc.Couples.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create couple %q: %v", name, err)
	}
	return c
}

func mustEntry(t *testing.T, svc *Services, owner *models.Couple, name string) *models.Sufgania {
	t.Helper()
	e, err := svc.Sufganiot.Create(context.Background(), SufganiaInput{CoupleID: owner.ID, Name: name})
	if err != nil {
		t.Fatalf("create sufgania %q: %v", name, err)
	}
	return e
}

func mustOpenVoting(t *testing.T, svc *Services) {
	t.Helper()
	if _, err := svc.Settings.OpenVoting(context.Background()); err != nil {
		t.Fatalf("open voting: %v", err)
	}
}

// contest 三对情侣各一个作品
type contest struct {
	couples []*models.Couple
	entries []*models.Sufgania
}

func newContest(t *testing.T, svc *Services) contest {
	t.Helper()
	var c contest
	for _, n := range []string{"Alpha", "Beta", "Gamma"} {
		couple := mustCouple(t, svc, n+" Couple")
		c.couples = append(c.couples, couple)
		c.entries = append(c.entries, mustEntry(t, svc, couple, n+" Donut"))
	}
	return c
}

func countVotes(t *testing.T, svc *Services, voterID string) int64 {
	t.Helper()
	var n int64
	if err := svc.Voting.db.Model(&models.Vote{}).Where("couple_id = ?", voterID).Count(&n).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	return n
}
