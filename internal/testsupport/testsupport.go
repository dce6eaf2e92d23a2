package testsupport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devconnector/internal"
	"devconnector/internal/auth"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/github"
	"devconnector/internal/users"
)

// TestJWTSecret signs every token minted by test apps.
const TestJWTSecret = "test-secret"

func init() {
	if os.Getenv("DEVCONNECTOR_ENV") == "" {
		os.Setenv("DEVCONNECTOR_ENV", config.Test)
	}
}

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// SetupTestDB creates a test database with all models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by root test name
// so subtests share it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", rootName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set DEVCONNECTOR_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	return NewTestDBManager(db), GetLogger()
}

// CreateTestUser creates a user with a bcrypt hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, password string) *users.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	email = users.NormalizeEmail(email)
	user := &users.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Avatar:       users.GravatarURL(email),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// TestTokens returns the token service test apps verify against.
func TestTokens() *auth.TokenService {
	return auth.NewTokenService(TestJWTSecret, time.Hour)
}

// TokenFor issues a valid token for user.
func TokenFor(t *testing.T, user *users.User) string {
	t.Helper()
	token, err := TestTokens().Issue(user.ID)
	require.NoError(t, err)
	return token
}

// TestAppOptions customizes CreateTestApp.
type TestAppOptions struct {
	// GitHubURL points the GitHub client at a fake server.
	GitHubURL string
}

// CreateTestApp creates a Fiber app with all API routes mounted on a cartridge server.
func CreateTestApp(t *testing.T, db *gorm.DB, opts ...TestAppOptions) *fiber.App {
	t.Helper()

	var opt TestAppOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	appConfig := config.GetConfig()
	appConfig.Environment = config.Test

	githubURL := opt.GitHubURL
	if githubURL == "" {
		githubURL = appConfig.GitHubAPIURL
	}

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = NewTestDBManager(db)
	cfg.StaticDirectory = appConfig.PublicDirectory
	cfg.StaticPrefix = appConfig.PublicAssetsUrlPrefix

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	mount := internal.RouteMounter(internal.RouteDeps{
		Config: appConfig,
		Tokens: TestTokens(),
		GitHub: github.NewClient(githubURL, "", ""),
	})
	mount(srv)
	return srv.App()
}

// Request performs an API request against app. body is JSON encoded when non-nil and
// token, when set, is sent in the x-auth-token header.
func Request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := app.Test(req, 30000)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

// DecodeJSON unmarshals body into a value of type T.
func DecodeJSON[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoErrorf(t, json.Unmarshal(body, &out), "body: %s", string(body))
	return out
}
