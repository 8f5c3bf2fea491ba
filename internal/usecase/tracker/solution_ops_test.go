package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "sincelast/internal/domain/tracker"
)

func TestCreateSolutionHighRatingResolvesParent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{Title: "flaky deploy", Description: "d"}, 1)
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	if _, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:       issue.IssueID,
		Description:   "pin the registry mirror",
		Steps:         `["edit config","redeploy"]`,
		Effectiveness: 4.5,
	}, 1); err != nil {
		t.Fatalf("CreateSolution() error = %v", err)
	}

	got, err := svc.GetIssueWithSolutions(ctx, issue.IssueID)
	if err != nil {
		t.Fatalf("GetIssueWithSolutions() error = %v", err)
	}
	if got.Status != domain.StatusResolved {
		t.Fatalf("parent status = %q, want resolved", got.Status)
	}
	if got.ResolvedAt == nil {
		t.Fatal("parent resolved_at not stamped")
	}
}

func TestCreateSolutionLowRatingLeavesParentAlone(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{Title: "t", Description: "d"}, 1)
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	if _, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:       issue.IssueID,
		Description:   "partial workaround",
		Steps:         `["retry"]`,
		Effectiveness: 3.9,
	}, 1); err != nil {
		t.Fatalf("CreateSolution() error = %v", err)
	}

	got, err := svc.GetIssueWithSolutions(ctx, issue.IssueID)
	if err != nil {
		t.Fatalf("GetIssueWithSolutions() error = %v", err)
	}
	if got.Status != domain.StatusOpen {
		t.Fatalf("parent status = %q, want open", got.Status)
	}
	if got.ResolvedAt != nil {
		t.Fatalf("parent resolved_at = %q, want nil", *got.ResolvedAt)
	}
}

func TestRepeatedEffectiveSolutionsKeepFirstResolveStamp(t *testing.T) {
	svc, clock := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{Title: "t", Description: "d"}, 1)
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	if _, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:       issue.IssueID,
		Description:   "first fix",
		Steps:         `["a"]`,
		Effectiveness: 4.2,
	}, 1); err != nil {
		t.Fatalf("first CreateSolution() error = %v", err)
	}

	got, err := svc.GetIssueWithSolutions(ctx, issue.IssueID)
	if err != nil {
		t.Fatalf("GetIssueWithSolutions() error = %v", err)
	}
	stamp := *got.ResolvedAt

	// A later effective solution against the already resolved issue is
	// harmless and leaves the stamp where it was.
	clock.Advance(4 * time.Hour)
	if _, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:       issue.IssueID,
		Description:   "second fix",
		Steps:         `["b"]`,
		Effectiveness: 5,
	}, 1); err != nil {
		t.Fatalf("second CreateSolution() error = %v", err)
	}

	got, err = svc.GetIssueWithSolutions(ctx, issue.IssueID)
	if err != nil {
		t.Fatalf("GetIssueWithSolutions() error = %v", err)
	}
	if got.Status != domain.StatusResolved {
		t.Fatalf("status = %q, want resolved", got.Status)
	}
	if got.ResolvedAt == nil || *got.ResolvedAt != stamp {
		t.Fatalf("resolved_at = %v, want unchanged %q", got.ResolvedAt, stamp)
	}
}

func TestEffectiveSolutionWithMissingParentFailsLoudly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:       424242,
		Description:   "fix for nothing",
		Steps:         `["a"]`,
		Effectiveness: 4.8,
	}, 1)
	if err == nil {
		t.Fatal("CreateSolution() error = nil, want missing-parent failure")
	}
	if !errors.Is(err, domain.ErrParentIssueMissing) {
		t.Fatalf("CreateSolution() error = %v, want ErrParentIssueMissing", err)
	}
	// The solution row itself was written before the invariant check.
	if created == nil {
		t.Fatal("CreateSolution() returned nil solution alongside the error")
	}
}

func TestUpdateSolutionRatingCrossingThresholdResolvesParent(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{Title: "t", Description: "d"}, 1)
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	solution, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:       issue.IssueID,
		Description:   "tentative",
		Steps:         `["a"]`,
		Effectiveness: 2,
	}, 1)
	if err != nil {
		t.Fatalf("CreateSolution() error = %v", err)
	}

	rating := 4.0
	if _, err := svc.UpdateSolution(ctx, solution.SolutionID, UpdateSolutionInput{Effectiveness: &rating}, 1); err != nil {
		t.Fatalf("UpdateSolution() error = %v", err)
	}

	got, err := svc.GetIssueWithSolutions(ctx, issue.IssueID)
	if err != nil {
		t.Fatalf("GetIssueWithSolutions() error = %v", err)
	}
	if got.Status != domain.StatusResolved {
		t.Fatalf("parent status = %q, want resolved", got.Status)
	}
}

func TestVerifySolutionMarksVerified(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{Title: "t", Description: "d"}, 1)
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	solution, err := svc.CreateSolution(ctx, CreateSolutionInput{
		IssueID:     issue.IssueID,
		Description: "fix",
		Steps:       `["a"]`,
	}, 1)
	if err != nil {
		t.Fatalf("CreateSolution() error = %v", err)
	}
	if solution.Verified {
		t.Fatal("new solution unexpectedly verified")
	}

	verified, err := svc.VerifySolution(ctx, solution.SolutionID, 1)
	if err != nil {
		t.Fatalf("VerifySolution() error = %v", err)
	}
	if !verified.Verified {
		t.Fatal("VerifySolution() did not set verified")
	}
}
