package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"sincelast/internal/bootstrap"
	"sincelast/internal/bootstrap/logging"
	"sincelast/internal/errs"
	"sincelast/internal/infrastructure/persistence/sqlite/model"
	"sincelast/internal/usecase/auth"
	"sincelast/internal/usecase/tracker"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and load demo data",
	Long:  "Reinitializes the schema, wipes all rows, and inserts demo users, categories, issues, solutions, and accident records. Logins: admin/admin123 and john.doe/user123.",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, _ *tracker.Service, _ *auth.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start seed")

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		db := app.DB.WithContext(ctx)

		for _, table := range []string{"accidents", "solutions", "issues", "categories", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return errs.Wrapf(err, "clear table %s", table)
			}
		}

		now := time.Now().UTC()
		stamp := func(t time.Time) string { return t.Format(time.RFC3339Nano) }

		adminHash, err := bcrypt.GenerateFromPassword([]byte("admin123"), app.Config.Auth.BcryptCost)
		if err != nil {
			return errs.Wrap(err, "hash admin password")
		}
		userHash, err := bcrypt.GenerateFromPassword([]byte("user123"), app.Config.Auth.BcryptCost)
		if err != nil {
			return errs.Wrap(err, "hash user password")
		}

		admin := model.User{
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: string(adminHash),
			Role:         "admin",
			CreatedAt:    stamp(now),
		}
		if err := db.Create(&admin).Error; err != nil {
			return errs.Wrap(err, "seed admin user")
		}
		regular := model.User{
			Username:     "john.doe",
			Email:        "john.doe@example.com",
			PasswordHash: string(userHash),
			Role:         "user",
			CreatedAt:    stamp(now),
		}
		if err := db.Create(&regular).Error; err != nil {
			return errs.Wrap(err, "seed regular user")
		}

		categories := []model.Category{
			{Name: "Build Issues", Description: strptr("Problems related to build processes, compilation errors, and CI/CD pipeline failures"), Color: "#ef4444", AccidentReset: true, CreatedAt: stamp(now)},
			{Name: "Deployment", Description: strptr("Issues with deployment processes, server configuration, and environment setup"), Color: "#f97316", AccidentReset: true, CreatedAt: stamp(now)},
			{Name: "Environment", Description: strptr("Development environment setup, dependency conflicts, and local configuration issues"), Color: "#eab308", AccidentReset: true, CreatedAt: stamp(now)},
			{Name: "Code Quality", Description: strptr("Code review findings, linting issues, and best practice violations"), Color: "#22c55e", AccidentReset: true, CreatedAt: stamp(now)},
			{Name: "Performance", Description: strptr("Performance issues, optimization opportunities, and resource utilization problems"), Color: "#3b82f6", AccidentReset: true, CreatedAt: stamp(now)},
			{Name: "Security", Description: strptr("Security vulnerabilities, authentication issues, and data protection concerns"), Color: "#8b5cf6", AccidentReset: true, CreatedAt: stamp(now)},
		}
		for i := range categories {
			if err := db.Create(&categories[i]).Error; err != nil {
				return errs.Wrapf(err, "seed category %s", categories[i].Name)
			}
		}

		issues := []model.Issue{
			{
				Title:       "Go compilation fails after dependency update",
				Description: "After bumping the router module to its next major version, compilation fails with type errors in the route registration files. The error suggests incompatible signatures between the old and new versions.",
				CategoryID:  &categories[0].CategoryID,
				Severity:    "high",
				Status:      "resolved",
				Tags:        strptr(`["go","router","compilation","dependencies"]`),
				CreatedBy:   admin.UserID,
				CreatedAt:   stamp(now.Add(-72 * time.Hour)),
				UpdatedAt:   stamp(now.Add(-24 * time.Hour)),
				ResolvedAt:  strptr(stamp(now.Add(-24 * time.Hour))),
			},
			{
				Title:       "Production deployment fails with Docker build error",
				Description: "Docker build process fails on the production server with a package download timeout. The issue appears to be related to network connectivity or registry access in the production environment.",
				CategoryID:  &categories[1].CategoryID,
				Severity:    "critical",
				Status:      "resolved",
				Tags:        strptr(`["docker","deployment","registry","production"]`),
				CreatedBy:   regular.UserID,
				CreatedAt:   stamp(now.Add(-96 * time.Hour)),
				UpdatedAt:   stamp(now.Add(-48 * time.Hour)),
				ResolvedAt:  strptr(stamp(now.Add(-48 * time.Hour))),
			},
			{
				Title:       "Linter configuration conflicts with formatter",
				Description: "New team member reports formatting conflicts between the linter and formatter configurations. Code gets reformatted differently by each tool, causing inconsistent style across the project.",
				CategoryID:  &categories[3].CategoryID,
				Severity:    "medium",
				Status:      "in_progress",
				Tags:        strptr(`["lint","formatting","configuration"]`),
				CreatedBy:   regular.UserID,
				CreatedAt:   stamp(now.Add(-48 * time.Hour)),
				UpdatedAt:   stamp(now.Add(-12 * time.Hour)),
			},
			{
				Title:       "Database query performance degradation",
				Description: "Dashboard loading time has increased significantly over the past week. Investigation shows several queries taking longer than expected, possibly due to missing indexes or data growth.",
				CategoryID:  &categories[4].CategoryID,
				Severity:    "high",
				Status:      "open",
				Tags:        strptr(`["database","performance","queries","optimization"]`),
				CreatedBy:   admin.UserID,
				CreatedAt:   stamp(now.Add(-24 * time.Hour)),
				UpdatedAt:   stamp(now.Add(-24 * time.Hour)),
			},
			{
				Title:       "Local development environment setup fails on ARM laptops",
				Description: "New developers with ARM laptops are unable to set up the local development environment. The issue seems related to native dependencies without ARM64 builds available.",
				CategoryID:  &categories[2].CategoryID,
				Severity:    "medium",
				Status:      "open",
				Tags:        strptr(`["arm64","dependencies","setup"]`),
				CreatedBy:   regular.UserID,
				CreatedAt:   stamp(now.Add(-12 * time.Hour)),
				UpdatedAt:   stamp(now.Add(-12 * time.Hour)),
			},
		}
		for i := range issues {
			if err := db.Create(&issues[i]).Error; err != nil {
				return errs.Wrapf(err, "seed issue %q", issues[i].Title)
			}
		}

		solutions := []model.Solution{
			{
				IssueID:       issues[0].IssueID,
				Description:   "Updated module configuration and route registration signatures",
				Steps:         `["Update go.mod to the new router major version","Adjust route registration to the new handler signatures","Run the full test suite to verify behavior","Document the migration in the project readme"]`,
				Effectiveness: 4.5,
				Verified:      true,
				CreatedBy:     admin.UserID,
				CreatedAt:     stamp(now.Add(-24 * time.Hour)),
				UpdatedAt:     stamp(now.Add(-24 * time.Hour)),
			},
			{
				IssueID:       issues[1].IssueID,
				Description:   "Fixed Docker build timeout by optimizing the dependency download step",
				Steps:         `["Add .dockerignore to exclude build artifacts","Use a multi-stage build to cache dependencies separately","Configure registry timeout and retry settings in the Dockerfile","Test the build in staging before production deployment"]`,
				Effectiveness: 5.0,
				Verified:      true,
				CreatedBy:     regular.UserID,
				CreatedAt:     stamp(now.Add(-48 * time.Hour)),
				UpdatedAt:     stamp(now.Add(-48 * time.Hour)),
			},
		}
		for i := range solutions {
			if err := db.Create(&solutions[i]).Error; err != nil {
				return errs.Wrapf(err, "seed solution for issue %d", solutions[i].IssueID)
			}
		}

		accidents := []model.Accident{
			{CategoryID: &categories[0].CategoryID, IssueID: issues[0].IssueID, OccurredAt: stamp(now.Add(-25 * time.Hour)), ResetCounter: true},
			{CategoryID: &categories[1].CategoryID, IssueID: issues[1].IssueID, OccurredAt: stamp(now.Add(-50 * time.Hour)), ResetCounter: true},
		}
		for i := range accidents {
			if err := db.Create(&accidents[i]).Error; err != nil {
				return errs.Wrapf(err, "seed accident for issue %d", accidents[i].IssueID)
			}
		}

		logging.Info(ctx, "seed finished",
			slog.Int("users", 2),
			slog.Int("categories", len(categories)),
			slog.Int("issues", len(issues)),
			slog.Int("solutions", len(solutions)),
			slog.Int("accidents", len(accidents)),
		)
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "database seeded; logins: admin/admin123, john.doe/user123"); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func strptr(s string) *string { return &s }

func init() {
	rootCmd.AddCommand(seedCmd)
}
