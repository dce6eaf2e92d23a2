// Package seeder loads a YAML fixture of users, profiles and posts into the database.
package seeder

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/karloscodes/cartridge"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"devconnector/internal/posts"
	"devconnector/internal/profiles"
	"devconnector/internal/users"
)

//go:embed fixtures/demo.yml
var demoFixture []byte

// Fixture is the document a seed file holds.
type Fixture struct {
	Users []UserFixture `yaml:"users"`
	Posts []PostFixture `yaml:"posts"`
}

type UserFixture struct {
	Name     string          `yaml:"name"`
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Profile  *ProfileFixture `yaml:"profile"`
}

type ProfileFixture struct {
	Status         string              `yaml:"status"`
	Company        string              `yaml:"company"`
	Website        string              `yaml:"website"`
	Location       string              `yaml:"location"`
	Bio            string              `yaml:"bio"`
	GitHubUsername string              `yaml:"githubusername"`
	Skills         string              `yaml:"skills"`
	Social         map[string]string   `yaml:"social"`
	Experience     []ExperienceFixture `yaml:"experience"`
	Education      []EducationFixture  `yaml:"education"`
}

type ExperienceFixture struct {
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Current     bool   `yaml:"current"`
	Description string `yaml:"description"`
}

type EducationFixture struct {
	School       string `yaml:"school"`
	Degree       string `yaml:"degree"`
	FieldOfStudy string `yaml:"fieldofstudy"`
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	Current      bool   `yaml:"current"`
	Description  string `yaml:"description"`
}

type PostFixture struct {
	Author   string           `yaml:"author"`
	Text     string           `yaml:"text"`
	Likes    []string         `yaml:"likes"`
	Comments []CommentFixture `yaml:"comments"`
}

type CommentFixture struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fixture, nil
}

// LoadFixture reads the fixture at path, or the bundled demo fixture when path is empty.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return ParseFixture(demoFixture)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Seeder writes fixtures through the same domain operations the API uses.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
	}
}

// Run seeds fixture. Users that already exist are reused and posts already written by
// the same author with the same text are skipped, so running it twice is harmless.
func (s *Seeder) Run(ctx context.Context, fixture *Fixture) error {
	start := time.Now()
	db := s.DBManager.GetConnection()

	byEmail := make(map[string]*users.User, len(fixture.Users))
	for _, uf := range fixture.Users {
		if err := ctx.Err(); err != nil {
			return err
		}
		user, err := s.seedUser(db, uf)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", uf.Email, err)
		}
		byEmail[user.Email] = user
	}

	lookup := func(email string) (*users.User, error) {
		email = users.NormalizeEmail(email)
		if user, ok := byEmail[email]; ok {
			return user, nil
		}
		user, err := users.FindByEmail(db, email)
		if err != nil {
			return nil, fmt.Errorf("unknown author %s: %w", email, err)
		}
		byEmail[email] = user
		return user, nil
	}

	for _, pf := range fixture.Posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.seedPost(db, pf, lookup); err != nil {
			return err
		}
	}

	s.Logger.Info("Seeding completed",
		slog.Int("users", len(fixture.Users)),
		slog.Int("posts", len(fixture.Posts)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Seeder) seedUser(db *gorm.DB, uf UserFixture) (*users.User, error) {
	user, err := users.Register(db, uf.Name, uf.Email, uf.Password)
	if errors.Is(err, users.ErrUserExists) {
		s.Logger.Info("User already exists, reusing", slog.String("email", uf.Email))
		return users.FindByEmail(db, uf.Email)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Created user", slog.String("email", user.Email))

	if uf.Profile == nil {
		return user, nil
	}
	pf := uf.Profile
	if _, err := profiles.Upsert(db, user.ID, profiles.Input{
		Company:        pf.Company,
		Website:        pf.Website,
		Location:       pf.Location,
		Bio:            pf.Bio,
		Status:         pf.Status,
		GitHubUsername: pf.GitHubUsername,
		Skills:         pf.Skills,
		Social:         pf.Social,
	}); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	for _, ef := range pf.Experience {
		from, to, err := profiles.ParseEntryRange(ef.From, ef.To, ef.Current)
		if err != nil {
			return nil, fmt.Errorf("experience %q: %w", ef.Title, err)
		}
		if _, err := profiles.AddExperience(db, user.ID, profiles.Experience{
			Title: ef.Title, Company: ef.Company, Location: ef.Location,
			From: from, To: to, Current: ef.Current, Description: ef.Description,
		}); err != nil {
			return nil, err
		}
	}
	for _, ef := range pf.Education {
		from, to, err := profiles.ParseEntryRange(ef.From, ef.To, ef.Current)
		if err != nil {
			return nil, fmt.Errorf("education %q: %w", ef.School, err)
		}
		if _, err := profiles.AddEducation(db, user.ID, profiles.Education{
			School: ef.School, Degree: ef.Degree, FieldOfStudy: ef.FieldOfStudy,
			From: from, To: to, Current: ef.Current, Description: ef.Description,
		}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *Seeder) seedPost(db *gorm.DB, pf PostFixture, lookup func(string) (*users.User, error)) error {
	author, err := lookup(pf.Author)
	if err != nil {
		return err
	}

	var existing int64
	if err := db.Model(&posts.Post{}).
		Where("user_id = ? AND text = ?", author.ID, strings.TrimSpace(pf.Text)).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		s.Logger.Debug("Post already seeded", slog.String("author", author.Email))
		return nil
	}

	post, err := posts.Create(db, author, pf.Text)
	if err != nil {
		return fmt.Errorf("failed to seed post by %s: %w", author.Email, err)
	}

	for _, email := range pf.Likes {
		liker, err := lookup(email)
		if err != nil {
			return err
		}
		if _, err := posts.LikePost(db, post.ID, liker.ID); err != nil && !errors.Is(err, posts.ErrAlreadyLiked) {
			return err
		}
	}
	for _, cf := range pf.Comments {
		commenter, err := lookup(cf.Author)
		if err != nil {
			return err
		}
		if _, err := posts.AddComment(db, post.ID, commenter, cf.Text); err != nil {
			return err
		}
	}
	return nil
}
