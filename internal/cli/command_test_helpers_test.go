package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

type commandTestEnv struct {
	databasePath string
}

// newCommandTestEnv points every command at a fresh database through the
// environment overrides.
func newCommandTestEnv(t *testing.T) *commandTestEnv {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "kombucha-eln-cli-test.db")
	t.Setenv("ELN_CONFIG", "")
	t.Setenv("DB_PATH", databasePath)
	t.Setenv("LOG_MODE", "production")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("PORT", "")
	return &commandTestEnv{databasePath: databasePath}
}

func (env *commandTestEnv) openStore(t *testing.T) *db.Store {
	t.Helper()

	database, err := db.OpenSQLite(env.databasePath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := db.NewStore(database)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func (env *commandTestEnv) seedUser(t *testing.T, username string) {
	t.Helper()

	store := env.openStore(t)
	if _, err := services.NewAuthService(store.Users).Register(context.Background(), username, "StrongPass1"); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func (env *commandTestEnv) expectLogin(t *testing.T, username string, password string) {
	t.Helper()

	store := env.openStore(t)
	if _, err := services.NewAuthService(store.Users).Authenticate(context.Background(), username, password); err != nil {
		t.Fatalf("expected %s to log in with %q: %v", username, password, err)
	}
}

func (env *commandTestEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}
