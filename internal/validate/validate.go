// Package validate holds the stateless structural validators run before a
// mutation reaches the tracker service. Validators never touch storage and
// never fail; they return a result. All violations accumulate in order,
// except that checks on an entirely absent field are skipped rather than
// also reported.
package validate

import (
	"regexp"
	"strings"

	"sincelast/internal/domain/tracker"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool         `json:"isValid"`
	Errors []FieldError `json:"errors"`
}

func resultOf(errs []FieldError) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

type IssueInput struct {
	Title       string
	Description string
	Severity    string
	Status      string
}

func Issue(in IssueInput) Result {
	var errs []FieldError

	title := strings.TrimSpace(in.Title)
	if title == "" {
		errs = append(errs, FieldError{"title", "Title is required"})
	} else if len(title) > 200 {
		errs = append(errs, FieldError{"title", "Title must be less than 200 characters"})
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		errs = append(errs, FieldError{"description", "Description is required"})
	} else if len(description) > 5000 {
		errs = append(errs, FieldError{"description", "Description must be less than 5000 characters"})
	}

	if in.Severity != "" && !tracker.ValidSeverity(tracker.Severity(in.Severity)) {
		errs = append(errs, FieldError{"severity", "Invalid severity level"})
	}

	if in.Status != "" && !tracker.ValidStatus(tracker.Status(in.Status)) {
		errs = append(errs, FieldError{"status", "Invalid status"})
	}

	return resultOf(errs)
}

type SolutionInput struct {
	IssueID       uint64
	Description   string
	Steps         string
	Effectiveness *float64
}

func Solution(in SolutionInput) Result {
	var errs []FieldError

	description := strings.TrimSpace(in.Description)
	if description == "" {
		errs = append(errs, FieldError{"description", "Solution description is required"})
	} else if len(description) > 5000 {
		errs = append(errs, FieldError{"description", "Description must be less than 5000 characters"})
	}

	if strings.TrimSpace(in.Steps) == "" {
		errs = append(errs, FieldError{"steps", "Solution steps are required"})
	}

	if in.IssueID == 0 {
		errs = append(errs, FieldError{"issueId", "Valid issue ID is required"})
	}

	if in.Effectiveness != nil {
		if eff := *in.Effectiveness; eff < 1 || eff > 5 {
			errs = append(errs, FieldError{"effectiveness", "Effectiveness must be a number between 1 and 5"})
		}
	}

	return resultOf(errs)
}

type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

func Category(in CategoryInput) Result {
	var errs []FieldError

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs = append(errs, FieldError{"name", "Category name is required"})
	} else if len(name) > 100 {
		errs = append(errs, FieldError{"name", "Name must be less than 100 characters"})
	}

	if in.Description != "" && len(in.Description) > 500 {
		errs = append(errs, FieldError{"description", "Description must be less than 500 characters"})
	}

	if in.Color != "" && !hexColorRe.MatchString(in.Color) {
		errs = append(errs, FieldError{"color", "Color must be a valid hex color code"})
	}

	return resultOf(errs)
}

type UserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

func User(in UserInput) Result {
	var errs []FieldError

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		errs = append(errs, FieldError{"username", "Username is required"})
	case len(username) < 3:
		errs = append(errs, FieldError{"username", "Username must be at least 3 characters"})
	case len(username) > 50:
		errs = append(errs, FieldError{"username", "Username must be less than 50 characters"})
	case !usernameRe.MatchString(username):
		errs = append(errs, FieldError{"username", "Username can only contain letters, numbers, dots, hyphens, and underscores"})
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		errs = append(errs, FieldError{"email", "Email is required"})
	} else if !emailRe.MatchString(email) {
		errs = append(errs, FieldError{"email", "Please enter a valid email address"})
	}

	if len(in.Password) < 6 {
		errs = append(errs, FieldError{"password", "Password must be at least 6 characters"})
	}

	if in.Role != "" && !tracker.ValidRole(tracker.Role(in.Role)) {
		errs = append(errs, FieldError{"role", "Invalid role"})
	}

	return resultOf(errs)
}

type SearchInput struct {
	Limit  *int
	Offset *int
}

func Search(in SearchInput) Result {
	var errs []FieldError

	if in.Limit != nil {
		if l := *in.Limit; l < 1 || l > 100 {
			errs = append(errs, FieldError{"limit", "Limit must be a number between 1 and 100"})
		}
	}

	if in.Offset != nil && *in.Offset < 0 {
		errs = append(errs, FieldError{"offset", "Offset must be a non-negative number"})
	}

	return resultOf(errs)
}
