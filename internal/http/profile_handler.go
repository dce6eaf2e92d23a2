package http

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnector/internal/profiles"
	"devconnector/internal/users"
	"devconnector/internal/validation"
)

type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status" validate:"notblank" msg:"Status is required"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills" validate:"notblank" msg:"Skills is required"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

type experienceRequest struct {
	Title       string `json:"title" validate:"notblank" msg:"Title is required"`
	Company     string `json:"company" validate:"notblank" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"notblank" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type educationRequest struct {
	School       string `json:"school" validate:"notblank" msg:"School is required"`
	Degree       string `json:"degree" validate:"notblank" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"notblank" msg:"Field of study is required"`
	From         string `json:"from" validate:"notblank" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// parseEntryRange wraps profiles.ParseEntryRange so bad dates come back as field errors.
func parseEntryRange(fromStr, toStr string, current bool) (time.Time, *time.Time, error) {
	from, to, err := profiles.ParseEntryRange(fromStr, toStr, current)
	switch {
	case errors.Is(err, profiles.ErrInvalidFromDate):
		return time.Time{}, nil, validation.Errors{{Msg: "From date is invalid", Param: "from", Location: "body"}}
	case errors.Is(err, profiles.ErrInvalidToDate):
		return time.Time{}, nil, validation.Errors{{Msg: "To date is invalid", Param: "to", Location: "body"}}
	}
	return from, to, err
}

// ProfileMeAction returns the caller's profile.
func (h *Handlers) ProfileMeAction(ctx *cartridge.Context) error {
	profile, err := profiles.FindByUserID(ctx.DB(), currentUserID(ctx))
	if errors.Is(err, profiles.ErrProfileNotFound) {
		return message(ctx, fiber.StatusNotFound, "There is no profile for this user")
	}
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ProfileUpsertAction creates or updates the caller's profile.
func (h *Handlers) ProfileUpsertAction(ctx *cartridge.Context) error {
	var req profileRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	// The token may outlive the account.
	db := ctx.DB()
	owner, err := users.FindByID(db, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	profile, err := profiles.Upsert(db, owner.ID, profiles.Input{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		Status:         req.Status,
		GitHubUsername: req.GitHubUsername,
		Skills:         req.Skills,
		Social: map[string]string{
			"youtube":   req.YouTube,
			"twitter":   req.Twitter,
			"facebook":  req.Facebook,
			"linkedin":  req.LinkedIn,
			"instagram": req.Instagram,
		},
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ProfilesIndexAction lists every profile.
func (h *Handlers) ProfilesIndexAction(ctx *cartridge.Context) error {
	list, err := profiles.List(ctx.DB())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// ProfileByUserAction returns the profile of the user in the path.
func (h *Handlers) ProfileByUserAction(ctx *cartridge.Context) error {
	profile, err := profiles.FindByUserID(ctx.DB(), ctx.Params("user_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ProfileDeleteAction deletes the caller's profile and account.
func (h *Handlers) ProfileDeleteAction(ctx *cartridge.Context) error {
	userID := currentUserID(ctx)
	if err := profiles.DeleteAccount(ctx.DB(), userID); err != nil {
		return respondError(ctx, err)
	}
	ctx.Logger.Info("Account deleted", slog.String("user_id", userID))
	return message(ctx, fiber.StatusOK, "User deleted")
}

// ExperienceCreateAction adds an experience entry to the caller's profile.
func (h *Handlers) ExperienceCreateAction(ctx *cartridge.Context) error {
	var req experienceRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	from, to, err := parseEntryRange(req.From, req.To, req.Current)
	if err != nil {
		return respondError(ctx, err)
	}

	profile, err := profiles.AddExperience(ctx.DB(), currentUserID(ctx), profiles.Experience{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ExperienceDeleteAction removes an experience entry from the caller's profile.
func (h *Handlers) ExperienceDeleteAction(ctx *cartridge.Context) error {
	profile, err := profiles.DeleteExperience(ctx.DB(), currentUserID(ctx), ctx.Params("exp_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// EducationCreateAction adds an education entry to the caller's profile.
func (h *Handlers) EducationCreateAction(ctx *cartridge.Context) error {
	var req educationRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	from, to, err := parseEntryRange(req.From, req.To, req.Current)
	if err != nil {
		return respondError(ctx, err)
	}

	profile, err := profiles.AddEducation(ctx.DB(), currentUserID(ctx), profiles.Education{
		School:       strings.TrimSpace(req.School),
		Degree:       strings.TrimSpace(req.Degree),
		FieldOfStudy: strings.TrimSpace(req.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  strings.TrimSpace(req.Description),
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// EducationDeleteAction removes an education entry from the caller's profile.
func (h *Handlers) EducationDeleteAction(ctx *cartridge.Context) error {
	profile, err := profiles.DeleteEducation(ctx.DB(), currentUserID(ctx), ctx.Params("edu_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// GitHubReposAction proxies the public repositories of a GitHub user.
func (h *Handlers) GitHubReposAction(ctx *cartridge.Context) error {
	repos, err := h.GitHub.ListRepos(ctx.UserContext(), ctx.Params("username"))
	if err != nil {
		return respondError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(repos)
}
