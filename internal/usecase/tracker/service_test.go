package tracker

import (
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"sincelast/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "sincelast/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "sincelast/internal/infrastructure/persistence/sqlite/uow"
)

// testClock is a controllable wall clock for the service under test.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setupService(t *testing.T) (*Service, *testClock) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tracker.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.User{}, &model.Category{}, &model.Issue{}, &model.Solution{}, &model.Accident{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	svc := NewService(
		sqliterepo.NewIssueRepository(db),
		sqliterepo.NewSolutionRepository(db),
		sqliterepo.NewCategoryRepository(db),
		sqliterepo.NewAccidentRepository(db),
		sqliteuow.NewUnitOfWork(db),
	)
	clock := &testClock{now: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	return svc, clock
}
