package profiles

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Experience is one job on a profile.
type Experience struct {
	ID          string     `gorm:"primaryKey;size:36" json:"_id"`
	ProfileID   string     `gorm:"index;not null;size:36" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Company     string     `gorm:"not null" json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `gorm:"not null" json:"from"`
	To          *time.Time `json:"to"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"-"`
}

// BeforeCreate assigns a UUID to entries created without one.
func (e *Experience) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Education is one school on a profile.
type Education struct {
	ID           string     `gorm:"primaryKey;size:36" json:"_id"`
	ProfileID    string     `gorm:"index;not null;size:36" json:"-"`
	School       string     `gorm:"not null" json:"school"`
	Degree       string     `gorm:"not null" json:"degree"`
	FieldOfStudy string     `gorm:"not null" json:"fieldofstudy"`
	From         time.Time  `gorm:"not null" json:"from"`
	To           *time.Time `json:"to"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"-"`
}

// BeforeCreate assigns a UUID to entries created without one.
func (e *Education) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// AddExperience prepends exp to the profile of userID and returns the updated profile.
func AddExperience(db *gorm.DB, userID string, exp Experience) (*Profile, error) {
	return mutateEntries(db, userID, func(tx *gorm.DB, profileID string) error {
		exp.ID = ""
		exp.ProfileID = profileID
		return tx.Create(&exp).Error
	})
}

// DeleteExperience removes the experience entry expID from the profile of userID.
// An id that is not on the profile leaves it unchanged.
func DeleteExperience(db *gorm.DB, userID, expID string) (*Profile, error) {
	return mutateEntries(db, userID, func(tx *gorm.DB, profileID string) error {
		return tx.Where("id = ? AND profile_id = ?", expID, profileID).Delete(&Experience{}).Error
	})
}

// AddEducation prepends edu to the profile of userID and returns the updated profile.
func AddEducation(db *gorm.DB, userID string, edu Education) (*Profile, error) {
	return mutateEntries(db, userID, func(tx *gorm.DB, profileID string) error {
		edu.ID = ""
		edu.ProfileID = profileID
		return tx.Create(&edu).Error
	})
}

// DeleteEducation removes the education entry eduID from the profile of userID.
// An id that is not on the profile leaves it unchanged.
func DeleteEducation(db *gorm.DB, userID, eduID string) (*Profile, error) {
	return mutateEntries(db, userID, func(tx *gorm.DB, profileID string) error {
		return tx.Where("id = ? AND profile_id = ?", eduID, profileID).Delete(&Education{}).Error
	})
}

// mutateEntries runs write against the caller's own profile. Entries are scoped by
// profile_id, so no other user's entries are reachable.
func mutateEntries(db *gorm.DB, userID string, write func(tx *gorm.DB, profileID string) error) (*Profile, error) {
	profileID, err := profileIDFor(db, userID)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	if err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return write(tx, profileID)
	}); err != nil {
		return nil, err
	}

	return FindByUserID(db, userID)
}
