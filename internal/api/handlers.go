package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/db"
	"github.com/terraincognita07/kombucha-eln/internal/logging"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptsLimit  = 8
	loginAttemptsWindow = 15 * time.Minute
)

// Dependencies are the collaborators a Handler is built from. Remote,
// Render, MetricsHandler and Location are optional.
type Dependencies struct {
	Store          *db.Store
	Logger         *logging.Logger
	Metrics        services.WorkflowMetrics
	MetricsHandler http.Handler
	Remote         services.RemoteNotebook
	Render         services.ReportRenderer
	SyncTags       []string
	Location       *time.Location
}

type Handler struct {
	secretKey      []byte
	cookieSecure   bool
	logger         *logging.Logger
	store          *db.Store
	metricsHandler http.Handler
	render         services.ReportRenderer
	loginLimiter   *attemptLimiter

	authService        *services.AuthService
	experimentService  *services.ExperimentService
	timepointService   *services.TimepointService
	batchService       *services.BatchService
	measurementService *services.MeasurementService
	snapshotService    *services.SnapshotService
	exportService      *services.ExportService
	syncService        *services.SyncService
}

type credentialsInput struct {
	Username   string `json:"username" form:"username"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
}

type passwordChangeInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type apiKeyInput struct {
	APIKey string `json:"api_key" form:"api_key"`
}

type createExperimentInput struct {
	Title      string `json:"title"`
	NumBatches *int   `json:"num_batches"`
}

type currentTimepointInput struct {
	TimepointID uint `json:"timepoint_id"`
}

type batchActionInput struct {
	At *time.Time `json:"at"`
	services.BatchActionValues
}

type completedInput struct {
	Completed bool `json:"completed"`
}

type samplesInput struct {
	Kinds []services.SampleKind `json:"kinds"`
	At    *time.Time            `json:"at"`
}

func NewHandler(secret string, cookieSecure bool, deps Dependencies) (*Handler, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("secret key is required")
	}
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}

	handler := &Handler{
		secretKey:      []byte(secret),
		cookieSecure:   cookieSecure,
		logger:         deps.Logger,
		store:          deps.Store,
		metricsHandler: deps.MetricsHandler,
		render:         deps.Render,
		loginLimiter:   newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
	}
	return handler.withDependencies(deps), nil
}
