package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/marketauth/pkg/cryptox"
	"github.com/aussiebroadwan/marketauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "Passw0rd!"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store    *sqlite.Store
	clock    *testClock
	sessions *SessionService
	users    *UserService
	roles    *RolesService
	perms    *PermissionsService
	resolver *PermissionResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}
	codec, err := jwtx.NewCodec([]byte("0123456789abcdef0123456789abcdef"), "marketauth-test", jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	return &fixture{
		store: st,
		clock: clock,
		sessions: &SessionService{
			Store:                st,
			Codec:                codec,
			AccessTTL:            15 * time.Minute,
			RefreshTTL:           7 * 24 * time.Hour,
			RequireActiveAccount: true,
			Now:                  clock.Now,
		},
		users:    &UserService{Store: st, RequireActiveAccount: true},
		roles:    &RolesService{Store: st},
		perms:    &PermissionsService{Store: st},
		resolver: &PermissionResolver{Store: st},
	}
}

// createActiveUser registers a user with testPassword and activates it.
func (f *fixture) createActiveUser(t *testing.T, email, role string) domain.Profile {
	t.Helper()

	p, err := f.users.CreateUser(context.Background(), SignupInput{
		Username:  "trader" + email[:3] + "x",
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Password:  testPassword,
	}, role, true)
	require.NoError(t, err)
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
