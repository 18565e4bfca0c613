package auth_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, session helpers, and assertions.
 */

const (
	testImageName = "marketauth-test:latest"

	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	jwtSecret     = "e2e-secret-0123456789abcdef012345"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete. Short runs skip the suite.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stdout, "skipping e2e tests in short mode")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupAuthContainer starts the auth service with relaxed rate limits and a
// seeded admin, returning the base URL.
func setupAuthContainer(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, map[string]string{
		// Tests make many rapid requests which would otherwise hit the strict production limits
		"RATELIMIT_STRICT_REQUESTS":  "1000",
		"RATELIMIT_LENIENT_REQUESTS": "1000",
	})
}

// setupAuthContainerWithDefaultRateLimits starts the auth service with the
// production rate limits. Only rate limit tests should use it.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	t.Helper()
	return startContainer(t, nil)
}

func startContainer(t *testing.T, extraEnv map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTH_DATABASE_FILE": "/data/auth.db",
		"AUTH_PEPPER_FILE":   "/data/pepper",
		"JWT_SECRET":         jwtSecret,
		"ENV":                "test",
		"LOG_LEVEL":          "info",
		"LOG_FORMAT":         "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		Entrypoint:   []string{"/bin/sh", "-c"},
		Cmd: []string{fmt.Sprintf(
			"auth seed-admin --email %s --password '%s' && exec auth serve",
			adminEmail, adminPassword,
		)},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// newClient returns a client that already holds a CSRF token.
func newClient(t *testing.T, baseURL string) *authsdk.Client {
	t.Helper()

	client, err := authsdk.NewClient(baseURL)
	require.NoError(t, err)

	_, err = client.CSRFToken(t.Context())
	require.NoError(t, err, "CSRF token should be issued")

	return client
}

// performLogin logs in with email and password and returns the session client.
func performLogin(t *testing.T, baseURL, email, password string) *authsdk.Client {
	t.Helper()

	client := newClient(t, baseURL)
	pair, err := client.Login(t.Context(), email, password)
	require.NoError(t, err, "Login should succeed")
	assertTokenPair(t, pair)

	return client
}

// signupAndActivate registers a USER through the public endpoint and
// activates it with the admin session.
func signupAndActivate(t *testing.T, baseURL string, admin *authsdk.Client, email string) {
	t.Helper()

	anon := newClient(t, baseURL)
	profile, err := anon.Signup(t.Context(), authsdk.SignupRequest{
		Username:  "e2e." + email[:5],
		Email:     email,
		Password:  adminPassword,
		FirstName: "End",
		LastName:  "ToEnd",
	})
	require.NoError(t, err, "Signup should succeed")
	require.False(t, profile.IsActive)

	_, err = admin.ActivateUser(t.Context(), profile.ID)
	require.NoError(t, err, "Activation should succeed")
}

// assertTokenPair verifies a login or refresh response carries both tokens.
func assertTokenPair(t *testing.T, pair *authsdk.TokenPair) {
	t.Helper()
	require.NotNil(t, pair)
	require.NotEmpty(t, pair.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, pair.RefreshToken, "Refresh token should not be empty")
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
