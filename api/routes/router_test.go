package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/davegutierrez/shoplite-backend/internal/analytics"
	"github.com/davegutierrez/shoplite-backend/internal/auth"
	"github.com/davegutierrez/shoplite-backend/internal/categories"
	movementsvc "github.com/davegutierrez/shoplite-backend/internal/movements"
	"github.com/davegutierrez/shoplite-backend/internal/products"
	pkgauth "github.com/davegutierrez/shoplite-backend/pkg/auth"
	"github.com/davegutierrez/shoplite-backend/pkg/auth/session"
	"github.com/davegutierrez/shoplite-backend/pkg/config"
	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) { return true, nil }

func (stubSessionManager) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(context.Context, string) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.Actor, auth.RegisterStaffRequest) (*auth.RegisterStaffResponse, error) {
	return &auth.RegisterStaffResponse{}, nil
}

type stubProductsService struct{}

func (stubProductsService) Create(context.Context, products.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Get(context.Context, uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) List(context.Context, products.ListFilter) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubProductsService) Update(context.Context, uuid.UUID, products.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Deactivate(context.Context, uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

type stubCategoriesService struct{}

func (stubCategoriesService) Create(context.Context, categories.CreateCategoryInput) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoriesService) Get(context.Context, uuid.UUID) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoriesService) List(context.Context, bool) ([]models.Category, error) {
	return []models.Category{}, nil
}

func (stubCategoriesService) Update(context.Context, uuid.UUID, categories.UpdateCategoryInput) (*models.Category, error) {
	panic("unimplemented")
}

func (stubCategoriesService) Deactivate(context.Context, uuid.UUID) (*models.Category, error) {
	panic("unimplemented")
}

type stubMovementsService struct{}

func (stubMovementsService) Create(context.Context, movementsvc.Actor, movementsvc.CreateMovementInput) (*movementsvc.CreateResult, error) {
	panic("unimplemented")
}

func (stubMovementsService) CancelSale(context.Context, movementsvc.Actor, uuid.UUID, *string) (*movementsvc.CreateResult, error) {
	panic("unimplemented")
}

func (stubMovementsService) CreateAdjustment(context.Context, movementsvc.Actor, movementsvc.AdjustmentInput) (*movementsvc.CreateResult, error) {
	panic("unimplemented")
}

func (stubMovementsService) Get(context.Context, uuid.UUID) (*movementsvc.MovementResponse, error) {
	panic("unimplemented")
}

func (stubMovementsService) List(context.Context, movementsvc.ListInput) (*movementsvc.MovementPage, error) {
	return &movementsvc.MovementPage{}, nil
}

func (stubMovementsService) VerifyConsistency(context.Context, movementsvc.Actor, bool) (*movementsvc.VerifyReport, error) {
	return &movementsvc.VerifyReport{}, nil
}

func (stubMovementsService) AllowedTypes(enums.UserRole) []enums.MovementType { return nil }

type stubAnalyticsService struct{}

func (stubAnalyticsService) Sales(context.Context, analytics.DateRange) (*analytics.SalesReport, error) {
	return &analytics.SalesReport{}, nil
}

func (stubAnalyticsService) TopProducts(context.Context, analytics.DateRange, int) ([]analytics.ProductTotal, error) {
	return nil, nil
}

func (stubAnalyticsService) LowStock(context.Context) ([]analytics.LowStockItem, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "shoplite-test",
			ExpirationMinutes: 15,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:  time.Minute,
			LoginIPLimit: 20,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		SessionManager:  stubSessionManager{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		Products:        stubProductsService{},
		Categories:      stubCategoriesService{},
		Movements:       stubMovementsService{},
		Analytics:       stubAnalyticsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movements", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOwnerGroupRequiresOwnerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/analytics/sales"},
		{http.MethodGet, "/api/v1/audit?entity_type=product&entity_id=" + uuid.NewString()},
		{http.MethodPost, "/api/v1/movements/verify"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStaff))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 for staff got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestOwnerCanVerifyLedger(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements/verify", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner verify got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAnalyticsAllowsOwner(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/sales", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner analytics got %d: %s", resp.Code, resp.Body.String())
	}
}
