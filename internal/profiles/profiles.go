package profiles

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devconnector/internal/users"
)

// ErrProfileNotFound is returned when a user has no profile.
var ErrProfileNotFound = errors.New("profile not found")

// SocialPlatforms lists the keys accepted in Profile.Social.
var SocialPlatforms = []string{"youtube", "twitter", "facebook", "linkedin", "instagram"}

// Owner is the slice of the owning user embedded in profile responses.
type Owner struct {
	ID     string `gorm:"primaryKey" json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// TableName maps Owner onto the users table.
func (Owner) TableName() string {
	return "users"
}

// Profile is a developer's public page. Each user owns at most one.
type Profile struct {
	ID             string                      `gorm:"primaryKey;size:36" json:"_id"`
	UserID         string                      `gorm:"uniqueIndex;not null;size:36" json:"-"`
	User           *Owner                      `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
	Company        string                      `json:"company,omitempty"`
	Website        string                      `json:"website,omitempty"`
	Location       string                      `json:"location,omitempty"`
	Bio            string                      `json:"bio,omitempty"`
	Status         string                      `gorm:"not null" json:"status"`
	GitHubUsername string                      `gorm:"column:github_username" json:"githubusername,omitempty"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	Social         datatypes.JSONMap           `json:"social"`
	Experience     []Experience                `gorm:"constraint:OnDelete:CASCADE" json:"experience"`
	Education      []Education                 `gorm:"constraint:OnDelete:CASCADE" json:"education"`
	CreatedAt      time.Time                   `json:"date"`
	UpdatedAt      time.Time                   `json:"-"`
}

// BeforeCreate assigns a UUID to profiles created without one.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Input carries the editable profile fields. Empty strings mean "not provided".
type Input struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         string
	Social         map[string]string
}

// ParseSkills splits a comma separated skill list, trimming whitespace and dropping blanks.
func ParseSkills(raw string) []string {
	skills := []string{}
	for _, skill := range strings.Split(raw, ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// withDetails preloads everything a profile response shows, entries newest first.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "avatar")
		}).
		Preload("Experience", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		Preload("Education", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		})
}

func (p *Profile) normalize() {
	if p.Skills == nil {
		p.Skills = datatypes.JSONSlice[string]{}
	}
	if p.Social == nil {
		p.Social = datatypes.JSONMap{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// FindByUserID retrieves the profile owned by userID.
func FindByUserID(db *gorm.DB, userID string) (*Profile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrProfileNotFound
	}

	var profile Profile
	if err := withDetails(db).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	profile.normalize()
	return &profile, nil
}

// List returns every profile, oldest first.
func List(db *gorm.DB) ([]Profile, error) {
	var profiles []Profile
	if err := withDetails(db).Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].normalize()
	}
	return profiles, nil
}

// Upsert creates the profile for userID or updates it in place in a single statement.
// Non-empty fields of in overwrite stored values, empty ones are left alone, and the
// social links are replaced as a whole.
func Upsert(db *gorm.DB, userID string, in Input) (*Profile, error) {
	social := datatypes.JSONMap{}
	for _, platform := range SocialPlatforms {
		if link := strings.TrimSpace(in.Social[platform]); link != "" {
			social[platform] = link
		}
	}

	profile := Profile{
		UserID:         userID,
		Company:        strings.TrimSpace(in.Company),
		Website:        strings.TrimSpace(in.Website),
		Location:       strings.TrimSpace(in.Location),
		Bio:            strings.TrimSpace(in.Bio),
		Status:         strings.TrimSpace(in.Status),
		GitHubUsername: strings.TrimSpace(in.GitHubUsername),
		Skills:         ParseSkills(in.Skills),
		Social:         social,
	}

	updates := []string{"social", "updated_at"}
	for column, value := range map[string]string{
		"company":         profile.Company,
		"website":         profile.Website,
		"location":        profile.Location,
		"bio":             profile.Bio,
		"status":          profile.Status,
		"github_username": profile.GitHubUsername,
	} {
		if value != "" {
			updates = append(updates, column)
		}
	}
	if strings.TrimSpace(in.Skills) != "" {
		updates = append(updates, "skills")
	}

	logger := slog.Default()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns(updates),
			}).
			Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}

	return FindByUserID(db, userID)
}

// DeleteAccount removes the profile of userID, its entries and the user record.
// Posts written by the user are kept.
func DeleteAccount(db *gorm.DB, userID string) error {
	logger := slog.Default()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		profileID, err := profileIDFor(tx, userID)
		switch {
		case err == nil:
			if err := tx.Where("profile_id = ?", profileID).Delete(&Experience{}).Error; err != nil {
				return err
			}
			if err := tx.Where("profile_id = ?", profileID).Delete(&Education{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", profileID).Delete(&Profile{}).Error; err != nil {
				return err
			}
		case !errors.Is(err, ErrProfileNotFound):
			return err
		}
		return tx.Where("id = ?", userID).Delete(&users.User{}).Error
	})
}

// profileIDFor returns the id of the profile owned by userID.
func profileIDFor(db *gorm.DB, userID string) (string, error) {
	var profile Profile
	err := db.Select("id").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	return profile.ID, nil
}
