package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/terraincognita07/kombucha-eln/internal/config"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func seedExperiment(t *testing.T, env *commandTestEnv) uint {
	t.Helper()

	store := env.openStore(t)
	ctx := context.Background()
	owner, err := services.NewAuthService(store.Users).Register(ctx, "alice", "StrongPass1")
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	experiment, err := services.NewExperimentService(store, nil).CreateExperiment(ctx, owner.ID, "Jasmine run", 2)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}
	started, err := services.NewTimepointService(store, nil, nil).StartWorkflow(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("start workflow: %v", err)
	}

	batches, err := services.NewBatchService(store, nil, nil).ListBatches(ctx, experiment.ID)
	if err != nil {
		t.Fatalf("list batches: %v", err)
	}
	if _, err := services.NewMeasurementService(store, nil, nil).RecordMeasurement(ctx, batches[0].ID, *started.CurrentTimepointID,
		services.MeasurementPatch{PHValue: services.Set(3.45)}); err != nil {
		t.Fatalf("record measurement: %v", err)
	}
	return experiment.ID
}

func TestSnapshotCommandPrintsTables(t *testing.T) {
	env := newCommandTestEnv(t)
	experimentID := seedExperiment(t, env)

	output, err := env.run(t, "", "snapshot", "1")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if experimentID != 1 {
		t.Fatalf("expected first experiment id 1, got %d", experimentID)
	}
	for _, fragment := range []string{"Experiment #1: Jasmine run", "Status: Running", "Current timepoint: t0", "Batch 1", "Batch 2", "3.45"} {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected %q in snapshot output:\n%s", fragment, output)
		}
	}
}

func TestSnapshotCommandJSON(t *testing.T) {
	env := newCommandTestEnv(t)
	seedExperiment(t, env)

	output, err := env.run(t, "", "snapshot", "1", "--json")
	if err != nil {
		t.Fatalf("snapshot --json failed: %v", err)
	}

	snapshot := services.ExperimentSnapshot{}
	if err := json.Unmarshal([]byte(output), &snapshot); err != nil {
		t.Fatalf("decode snapshot json: %v", err)
	}
	if snapshot.Title != "Jasmine run" || len(snapshot.Batches) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if len(snapshot.Batches[0].Timepoints) != 1 || snapshot.Batches[0].Timepoints[0].Name != "t0" {
		t.Fatalf("expected one t0 measurement on the first batch, got %+v", snapshot.Batches[0].Timepoints)
	}
}

func TestSnapshotCommandRejectsBadIDs(t *testing.T) {
	env := newCommandTestEnv(t)

	if _, err := env.run(t, "", "snapshot", "abc"); err == nil || !strings.Contains(err.Error(), "invalid experiment id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
	if _, err := env.run(t, "", "snapshot", "42"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestMigrateCommandListsAppliedMigrations(t *testing.T) {
	env := newCommandTestEnv(t)

	output, err := env.run(t, "", "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, fragment := range []string{"001_init.sql", "004_users_username_normalized.sql", "applied"} {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected %q in migrate output:\n%s", fragment, output)
		}
	}
	if strings.Contains(output, "pending") {
		t.Fatalf("expected no pending migrations:\n%s", output)
	}
}

func TestConfigSampleCommandPrintsLoadableConfig(t *testing.T) {
	env := newCommandTestEnv(t)

	output, err := env.run(t, "", "config-sample")
	if err != nil {
		t.Fatalf("config-sample failed: %v", err)
	}
	if !strings.Contains(output, "[elabftw]") {
		t.Fatalf("expected elabftw section in sample config:\n%s", output)
	}
}

func TestCheckSecretKey(t *testing.T) {
	cfg := config.Default()
	if err := checkSecretKey(cfg); err == nil {
		t.Fatal("expected placeholder secret to be rejected")
	}

	cfg.Server.SecretKey = "too-short-secret"
	if err := checkSecretKey(cfg); err == nil {
		t.Fatal("expected short secret to be rejected")
	}

	cfg.Server.SecretKey = "0123456789abcdef0123456789abcdef"
	if err := checkSecretKey(cfg); err != nil {
		t.Fatalf("expected valid secret, got %v", err)
	}
}

func TestNewServerWiresRoutesAndMiddleware(t *testing.T) {
	env := newCommandTestEnv(t)
	store := env.openStore(t)

	cfg := config.Default()
	cfg.Server.SecretKey = "0123456789abcdef0123456789abcdef"
	app, err := newServer(cfg, logging.Nop(), store)
	if err != nil {
		t.Fatalf("newServer returned error: %v", err)
	}

	for _, path := range []string{"/healthz", "/metrics"} {
		response, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		response.Body.Close()
		if response.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", path, response.StatusCode)
		}
		if response.Header.Get("X-Request-Id") == "" {
			t.Fatalf("GET %s: expected request id header", path)
		}
	}

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/experiments", nil), -1)
	if err != nil {
		t.Fatalf("GET /api/experiments failed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without session, got %d", response.StatusCode)
	}
}
