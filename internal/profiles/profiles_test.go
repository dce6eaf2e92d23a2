package profiles_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/posts"
	"devconnector/internal/profiles"
	"devconnector/internal/testsupport"
	"devconnector/internal/users"
)

func TestParseSkills(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "comma separated", input: "go,rust", expected: []string{"go", "rust"}},
		{name: "trims whitespace", input: " go , rust ,  python", expected: []string{"go", "rust", "python"}},
		{name: "drops blanks", input: "go,, ,rust,", expected: []string{"go", "rust"}},
		{name: "empty", input: "", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, profiles.ParseSkills(tt.input))
		})
	}
}

func TestUpsert(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("creates profile with parsed skills", func(t *testing.T) {
		user := testsupport.CreateTestUser(t, db, "Acme Dev", "acme@example.com", "password123")

		profile, err := profiles.Upsert(db, user.ID, profiles.Input{
			Company: "Acme",
			Status:  "Employed",
			Skills:  "go,rust",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, profile.ID)
		assert.Equal(t, "Acme", profile.Company)
		assert.Equal(t, "Employed", profile.Status)
		assert.Equal(t, []string{"go", "rust"}, []string(profile.Skills))
		require.NotNil(t, profile.User)
		assert.Equal(t, user.ID, profile.User.ID)
		assert.Equal(t, "Acme Dev", profile.User.Name)
		assert.Empty(t, profile.Experience)
	})

	t.Run("updates existing profile in place", func(t *testing.T) {
		user := testsupport.CreateTestUser(t, db, "Updater", "update@example.com", "password123")

		first, err := profiles.Upsert(db, user.ID, profiles.Input{
			Company:  "Acme",
			Location: "Berlin",
			Status:   "Employed",
			Skills:   "go",
			Social:   map[string]string{"twitter": "https://twitter.com/acme"},
		})
		require.NoError(t, err)

		second, err := profiles.Upsert(db, user.ID, profiles.Input{
			Company: "Globex",
			Status:  "Freelancer",
			Skills:  "go, elixir",
			Social:  map[string]string{"github": "ignored", "youtube": "https://youtube.com/globex"},
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Globex", second.Company)
		assert.Equal(t, "Berlin", second.Location, "fields left empty keep their stored value")
		assert.Equal(t, "Freelancer", second.Status)
		assert.Equal(t, []string{"go", "elixir"}, []string(second.Skills))
		assert.Equal(t, map[string]interface{}{"youtube": "https://youtube.com/globex"}, map[string]interface{}(second.Social))

		var count int64
		require.NoError(t, db.Model(&profiles.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestFindByUserID(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	t.Run("returns not found for user without profile", func(t *testing.T) {
		user := testsupport.CreateTestUser(t, db, "No Profile", "none@example.com", "password123")

		_, err := profiles.FindByUserID(db, user.ID)
		assert.ErrorIs(t, err, profiles.ErrProfileNotFound)
	})

	t.Run("returns not found for malformed id", func(t *testing.T) {
		_, err := profiles.FindByUserID(db, "12345")
		assert.ErrorIs(t, err, profiles.ErrProfileNotFound)
	})
}

func TestList(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	for _, email := range []string{"one@example.com", "two@example.com"} {
		user := testsupport.CreateTestUser(t, db, email, email, "password123")
		_, err := profiles.Upsert(db, user.ID, profiles.Input{Status: "Developer", Skills: "go"})
		require.NoError(t, err)
	}

	list, err := profiles.List(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one@example.com", list[0].User.Name)
	assert.Equal(t, "two@example.com", list[1].User.Name)
}

func TestExperience(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	user := testsupport.CreateTestUser(t, db, "Worker", "worker@example.com", "password123")
	_, err := profiles.Upsert(db, user.ID, profiles.Input{Status: "Developer", Skills: "go"})
	require.NoError(t, err)

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("entries are listed newest first", func(t *testing.T) {
		_, err := profiles.AddExperience(db, user.ID, profiles.Experience{Title: "Junior", Company: "Acme", From: from})
		require.NoError(t, err)
		profile, err := profiles.AddExperience(db, user.ID, profiles.Experience{Title: "Senior", Company: "Acme", From: from, Current: true})
		require.NoError(t, err)

		require.Len(t, profile.Experience, 2)
		assert.Equal(t, "Senior", profile.Experience[0].Title)
		assert.Equal(t, "Junior", profile.Experience[1].Title)
	})

	t.Run("deleting an unknown id leaves the list unchanged", func(t *testing.T) {
		before, err := profiles.FindByUserID(db, user.ID)
		require.NoError(t, err)

		after, err := profiles.DeleteExperience(db, user.ID, "00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)

		assert.Equal(t, before.Experience, after.Experience)
	})

	t.Run("deletes exactly the matching entry", func(t *testing.T) {
		before, err := profiles.FindByUserID(db, user.ID)
		require.NoError(t, err)
		require.Len(t, before.Experience, 2)

		after, err := profiles.DeleteExperience(db, user.ID, before.Experience[0].ID)
		require.NoError(t, err)

		require.Len(t, after.Experience, 1)
		assert.Equal(t, before.Experience[1].ID, after.Experience[0].ID)
	})

	t.Run("cannot delete another user's entry", func(t *testing.T) {
		other := testsupport.CreateTestUser(t, db, "Other", "other-worker@example.com", "password123")
		_, err := profiles.Upsert(db, other.ID, profiles.Input{Status: "Developer", Skills: "go"})
		require.NoError(t, err)

		mine, err := profiles.FindByUserID(db, user.ID)
		require.NoError(t, err)
		require.NotEmpty(t, mine.Experience)

		_, err = profiles.DeleteExperience(db, other.ID, mine.Experience[0].ID)
		require.NoError(t, err)

		still, err := profiles.FindByUserID(db, user.ID)
		require.NoError(t, err)
		assert.Len(t, still.Experience, len(mine.Experience))
	})

	t.Run("requires a profile", func(t *testing.T) {
		loner := testsupport.CreateTestUser(t, db, "Loner", "loner@example.com", "password123")

		_, err := profiles.AddExperience(db, loner.ID, profiles.Experience{Title: "Dev", Company: "Acme", From: from})
		assert.ErrorIs(t, err, profiles.ErrProfileNotFound)
	})
}

func TestEducation(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	user := testsupport.CreateTestUser(t, db, "Student", "student@example.com", "password123")
	_, err := profiles.Upsert(db, user.ID, profiles.Input{Status: "Student", Skills: "go"})
	require.NoError(t, err)

	from := time.Date(2016, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	profile, err := profiles.AddEducation(db, user.ID, profiles.Education{
		School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: from, To: &to,
	})
	require.NoError(t, err)
	require.Len(t, profile.Education, 1)
	assert.Equal(t, "CS", profile.Education[0].FieldOfStudy)
	require.NotNil(t, profile.Education[0].To)
	assert.True(t, to.Equal(*profile.Education[0].To))

	unchanged, err := profiles.DeleteEducation(db, user.ID, "not-an-id")
	require.NoError(t, err)
	assert.Len(t, unchanged.Education, 1)

	emptied, err := profiles.DeleteEducation(db, user.ID, profile.Education[0].ID)
	require.NoError(t, err)
	assert.Empty(t, emptied.Education)
}

func TestDeleteAccount(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	leaving := testsupport.CreateTestUser(t, db, "Leaving", "leaving@example.com", "password123")
	staying := testsupport.CreateTestUser(t, db, "Staying", "staying@example.com", "password123")

	for _, u := range []*users.User{leaving, staying} {
		_, err := profiles.Upsert(db, u.ID, profiles.Input{Status: "Developer", Skills: "go"})
		require.NoError(t, err)
	}
	_, err := profiles.AddExperience(db, leaving.ID, profiles.Experience{Title: "Dev", Company: "Acme", From: time.Now()})
	require.NoError(t, err)

	leavingPost, err := posts.Create(db, leaving, "goodbye")
	require.NoError(t, err)
	stayingPost, err := posts.Create(db, staying, "hello")
	require.NoError(t, err)

	require.NoError(t, profiles.DeleteAccount(db, leaving.ID))

	var profileCount int64
	require.NoError(t, db.Model(&profiles.Profile{}).Count(&profileCount).Error)
	assert.Equal(t, int64(1), profileCount, "exactly one profile is removed")

	var experienceCount int64
	require.NoError(t, db.Model(&profiles.Experience{}).Count(&experienceCount).Error)
	assert.Zero(t, experienceCount)

	_, err = users.FindByID(db, leaving.ID)
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	_, err = posts.FindByID(db, leavingPost.ID)
	assert.NoError(t, err, "posts outlive their author")
	_, err = posts.FindByID(db, stayingPost.ID)
	assert.NoError(t, err)
}
