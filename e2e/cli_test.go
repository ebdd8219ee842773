package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ijo-project/ijo-backend/internal/api"
	"github.com/ijo-project/ijo-backend/internal/api/response"
	"github.com/ijo-project/ijo-backend/internal/factory"
)

var binaryPath string

func TestMain(m *testing.M) {
	os.Exit(runTests(m))
}

func runTests(m *testing.M) int {
	root, err := findProjectRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	dir, err := os.MkdirTemp("", "ijo-e2e")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = os.RemoveAll(dir) }()

	binaryPath = filepath.Join(dir, "ijo")
	build := exec.Command("go", "build", "-o", binaryPath, "./cmd/ijo")
	build.Dir = root
	if output, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build CLI: %v\n%s", err, output)
		return 1
	}

	return m.Run()
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// cliRunner runs the CLI binary with its own token file
type cliRunner struct {
	serverURL string
	tokenFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	return &cliRunner{
		serverURL: serverURL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "IJO_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func decodeOutput[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// testEnv is an API server backed by an in-memory TestApp
type testEnv struct {
	app    *factory.TestApp
	server *httptest.Server
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	app := factory.NewTestApp()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		UsersService:     app.UsersService,
		ScanService:      app.ScanService,
		GamesService:     app.GamesService,
		CompanionService: app.CompanionService,
		ContentService:   app.ContentService,
		AllowedOrigins:   []string{"*"},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{app: app, server: server}
}

func (e *testEnv) adminCLI(t *testing.T) *cliRunner {
	t.Helper()

	_, err := e.app.CreateAdmin(context.Background(), "admin@school.id")
	require.NoError(t, err)

	admin := newCLIRunner(t, e.server.URL)
	output, err := admin.run("auth", "login", "--email", "admin@school.id", "--password", factory.TestPassword)
	require.NoError(t, err, "output: %s", output)
	return admin
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	env := startTestServer(t)
	cli := newCLIRunner(t, env.server.URL)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decodeOutput[response.Health](t, output)
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_StudentJourney(t *testing.T) {
	env := startTestServer(t)
	admin := env.adminCLI(t)
	student := newCLIRunner(t, env.server.URL)

	// Register and wait for approval
	output, err := student.run("auth", "register",
		"--email", "siti@school.id", "--password", "rahasia1", "--name", "Siti", "--class", "8B")
	require.NoError(t, err, "output: %s", output)
	registered := decodeOutput[response.RegisterResponse](t, output)
	require.NotEmpty(t, registered.UserID)

	output, err = student.run("auth", "login", "--email", "siti@school.id", "--password", "rahasia1")
	require.Error(t, err)
	assert.Contains(t, output, "ACCOUNT_PENDING")

	output, err = admin.run("users", "approve", registered.UserID)
	require.NoError(t, err, "output: %s", output)
	status := decodeOutput[response.StatusResponse](t, output)
	assert.Equal(t, "active", status.User.Status)

	output, err = student.run("auth", "login", "--email", "siti@school.id", "--password", "rahasia1")
	require.NoError(t, err, "output: %s", output)
	login := decodeOutput[response.LoginResponse](t, output)
	assert.Equal(t, "student", login.Role)

	// Three scans of 10 coins mint a ticket
	var scan response.ScanResponse
	for i := 0; i < 3; i++ {
		output, err = student.run("scan", "plastic")
		require.NoError(t, err, "output: %s", output)
		scan = decodeOutput[response.ScanResponse](t, output)
	}
	assert.Equal(t, 0, scan.NewCoinBalance)
	assert.Equal(t, 1, scan.Tickets)
	assert.True(t, scan.TicketMinted)

	// Spend it on a game
	output, err = student.run("game", "start")
	require.NoError(t, err, "output: %s", output)
	start := decodeOutput[response.StartGameResponse](t, output)
	assert.Equal(t, 0, start.RemainingTickets)

	output, err = student.run("game", "start")
	require.Error(t, err)
	assert.Contains(t, output, "TICKETS_EXHAUSTED")

	output, err = student.run("game", "score", "--game", "snake", "--score", "42")
	require.NoError(t, err, "output: %s", output)
	score := decodeOutput[response.ScoreResponse](t, output)
	assert.True(t, score.NewRecord)
	assert.Equal(t, 42, score.TotalGlobalScore)

	// Adopt a companion and check in
	output, err = student.run("item", "choose", "--type", "Tumbler", "--name", "Tumi", "--personality", "cheerful")
	require.NoError(t, err, "output: %s", output)
	item := decodeOutput[response.Item](t, output)
	assert.Equal(t, 1, item.Level)

	output, err = student.run("item", "checkin")
	require.NoError(t, err, "output: %s", output)
	checkIn := decodeOutput[response.CheckInResponse](t, output)
	assert.Equal(t, 15, checkIn.CurrentXP)
	assert.Equal(t, 1, checkIn.StreakDays)

	output, err = student.run("item", "checkin")
	require.Error(t, err)
	assert.Contains(t, output, "ALREADY_CHECKED_IN")

	// The leaderboard shows the student with their companion
	output, err = student.run("game", "leaderboard", "--game", "snake")
	require.NoError(t, err, "output: %s", output)
	board := decodeOutput[[]response.LeaderboardEntry](t, output)
	require.Len(t, board, 1)
	assert.Equal(t, "Siti", board[0].FullName)
	assert.True(t, board[0].IsYou)
	require.NotNil(t, board[0].ActiveItem)
	assert.Equal(t, "Tumi", board[0].ActiveItem.Name)

	output, err = student.run("auth", "profile")
	require.NoError(t, err, "output: %s", output)
	profile := decodeOutput[response.Profile](t, output)
	assert.Equal(t, 0, profile.Coins)
	assert.Equal(t, 0, profile.Tickets)
	require.NotNil(t, profile.Companion)
	assert.Equal(t, item.ID, profile.Companion.ID)
}

func TestCLI_AdminCommands(t *testing.T) {
	env := startTestServer(t)
	admin := env.adminCLI(t)

	account, err := env.app.CreateStudent(context.Background(), "budi@school.id", "Budi", "7A")
	require.NoError(t, err)

	output, err := admin.run("users", "list")
	require.NoError(t, err, "output: %s", output)
	accounts := decodeOutput[[]response.Account](t, output)
	require.Len(t, accounts, 1)
	assert.Equal(t, "budi@school.id", accounts[0].Email)

	output, err = admin.run("users", "reject", string(account.ID))
	require.NoError(t, err, "output: %s", output)

	output, err = admin.run("users", "delete", string(account.ID))
	require.NoError(t, err, "output: %s", output)

	output, err = admin.run("users", "delete", string(account.ID))
	require.Error(t, err)
	assert.Contains(t, output, "ACCOUNT_NOT_FOUND")

	output, err = admin.run("content", "update", "hero_section", `{"title":"Sampah Jadi Koin"}`)
	require.NoError(t, err, "output: %s", output)

	output, err = admin.run("content", "show")
	require.NoError(t, err, "output: %s", output)
	blocks := decodeOutput[map[string]json.RawMessage](t, output)
	assert.JSONEq(t, `{"title":"Sampah Jadi Koin"}`, string(blocks["hero_section"]))
	assert.Contains(t, blocks, "footer_info")
}

func TestCLI_ErrorHandling(t *testing.T) {
	env := startTestServer(t)
	cli := newCLIRunner(t, env.server.URL)

	output, err := cli.run("auth", "profile")
	assert.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	_, err = env.app.CreateStudent(context.Background(), "rina@school.id", "Rina", "9C")
	require.NoError(t, err)
	output, err = cli.run("auth", "login", "--email", "rina@school.id", "--password", factory.TestPassword)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("users", "list")
	assert.Error(t, err)
	assert.Contains(t, output, "NOT_ADMIN")

	output, err = cli.run("game", "score", "--game", "tetris", "--score", "1")
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_REQUEST")

	output, err = cli.run("auth", "logout")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("item", "show")
	assert.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}
