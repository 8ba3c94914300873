package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/davegutierrez/shoplite-backend/api/middleware"
	movementsvc "github.com/davegutierrez/shoplite-backend/internal/movements"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
)

type stubMovementsService struct {
	createInput movementsvc.CreateMovementInput
	createActor movementsvc.Actor
	cancelID    uuid.UUID
	cancelNote  *string
	listInput   movementsvc.ListInput
	verifyCalls []bool
	result      *movementsvc.CreateResult
	err         error
}

func (s *stubMovementsService) Create(_ context.Context, actor movementsvc.Actor, input movementsvc.CreateMovementInput) (*movementsvc.CreateResult, error) {
	s.createActor = actor
	s.createInput = input
	return s.result, s.err
}

func (s *stubMovementsService) CancelSale(_ context.Context, _ movementsvc.Actor, movementID uuid.UUID, note *string) (*movementsvc.CreateResult, error) {
	s.cancelID = movementID
	s.cancelNote = note
	return s.result, s.err
}

func (s *stubMovementsService) CreateAdjustment(_ context.Context, actor movementsvc.Actor, input movementsvc.AdjustmentInput) (*movementsvc.CreateResult, error) {
	s.createActor = actor
	return s.result, s.err
}

func (s *stubMovementsService) Get(context.Context, uuid.UUID) (*movementsvc.MovementResponse, error) {
	if s.result != nil {
		return &s.result.Movement, s.err
	}
	return nil, s.err
}

func (s *stubMovementsService) List(_ context.Context, input movementsvc.ListInput) (*movementsvc.MovementPage, error) {
	s.listInput = input
	return &movementsvc.MovementPage{Items: []movementsvc.MovementResponse{}}, s.err
}

func (s *stubMovementsService) VerifyConsistency(_ context.Context, _ movementsvc.Actor, repair bool) (*movementsvc.VerifyReport, error) {
	s.verifyCalls = append(s.verifyCalls, repair)
	return &movementsvc.VerifyReport{}, s.err
}

func (s *stubMovementsService) AllowedTypes(role enums.UserRole) []enums.MovementType {
	return []enums.MovementType{enums.MovementTypeSaleOffline}
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func actorContext(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	ctx = middleware.WithUserID(ctx, userID.String())
	return middleware.WithRole(ctx, string(role))
}

func TestMovementCreate(t *testing.T) {
	logg := testControllerLogger()
	userID := uuid.New()
	productID := uuid.New()

	stub := &stubMovementsService{result: &movementsvc.CreateResult{
		Movement:   movementsvc.MovementResponse{ID: uuid.New(), ProductID: productID, Qty: -3},
		StockAfter: 7,
	}}

	t.Run("success", func(t *testing.T) {
		body := `{"product_id":"` + productID.String() + `","type":"sale_offline","qty":3,"unit_price_cents":1500}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", strings.NewReader(body))
		req = req.WithContext(actorContext(req.Context(), userID, enums.UserRoleStaff))
		rec := httptest.NewRecorder()
		MovementCreate(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.createActor.UserID != userID {
			t.Fatalf("expected actor %s got %s", userID, stub.createActor.UserID)
		}
		if stub.createInput.Qty != 3 || stub.createInput.Type != "sale_offline" {
			t.Fatalf("unexpected input forwarded: %+v", stub.createInput)
		}
		if stub.createInput.UnitPriceCents == nil || *stub.createInput.UnitPriceCents != 1500 {
			t.Fatalf("unit price not forwarded: %+v", stub.createInput.UnitPriceCents)
		}

		var payload struct {
			Data movementsvc.CreateResult `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if payload.Data.StockAfter != 7 {
			t.Fatalf("expected stock_after 7 got %d", payload.Data.StockAfter)
		}
	})

	t.Run("missing actor", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		MovementCreate(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", strings.NewReader(`{"qty":`))
		req = req.WithContext(actorContext(req.Context(), userID, enums.UserRoleStaff))
		rec := httptest.NewRecorder()
		MovementCreate(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestMovementCancel(t *testing.T) {
	logg := testControllerLogger()
	userID := uuid.New()
	movementID := uuid.New()

	stub := &stubMovementsService{result: &movementsvc.CreateResult{
		Movement: movementsvc.MovementResponse{ID: uuid.New(), Qty: 3},
	}}

	makeRequest := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/movements/"+id+"/cancel", strings.NewReader(body))
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("movementId", id)
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
		ctx = actorContext(ctx, userID, enums.UserRoleOwner)
		rec := httptest.NewRecorder()
		MovementCancel(stub, logg).ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	t.Run("success with note", func(t *testing.T) {
		rec := makeRequest(movementID.String(), `{"note":"customer returned"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.cancelID != movementID {
			t.Fatalf("expected movement %s got %s", movementID, stub.cancelID)
		}
		if stub.cancelNote == nil || *stub.cancelNote != "customer returned" {
			t.Fatalf("expected note forwarded, got %v", stub.cancelNote)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := makeRequest("not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestMovementListForwardsFilters(t *testing.T) {
	logg := testControllerLogger()
	productID := uuid.New()

	stub := &stubMovementsService{}
	url := "/api/v1/movements?product_id=" + productID.String() + "&type=sale_offline&limit=10&cursor=abc&start_date=2026-02-01&end_date=2026-02-28"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	MovementList(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.listInput.ProductID == nil || *stub.listInput.ProductID != productID {
		t.Fatalf("expected product filter forwarded, got %v", stub.listInput.ProductID)
	}
	if stub.listInput.Type == nil || *stub.listInput.Type != "sale_offline" {
		t.Fatalf("expected type filter forwarded, got %v", stub.listInput.Type)
	}
	if stub.listInput.Pagination.Limit != 10 || stub.listInput.Pagination.Cursor != "abc" {
		t.Fatalf("unexpected pagination forwarded: %+v", stub.listInput.Pagination)
	}
	wantStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !stub.listInput.Start.Equal(wantStart) {
		t.Fatalf("start bound = %v, want %v", stub.listInput.Start, wantStart)
	}
	// The inclusive end date becomes an exclusive bound one day later.
	wantEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !stub.listInput.End.Equal(wantEnd) {
		t.Fatalf("end bound = %v, want %v", stub.listInput.End, wantEnd)
	}
}

func TestMovementListRejectsBadQuery(t *testing.T) {
	logg := testControllerLogger()
	stub := &stubMovementsService{}

	for _, query := range []string{"product_id=nope", "start_date=yesterday"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/movements?"+query, nil)
		rec := httptest.NewRecorder()
		MovementList(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400 got %d", query, rec.Code)
		}
	}
}

func TestMovementVerifyForwardsRepairFlag(t *testing.T) {
	logg := testControllerLogger()
	userID := uuid.New()
	stub := &stubMovementsService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements/verify?repair=true", nil)
	req = req.WithContext(actorContext(req.Context(), userID, enums.UserRoleOwner))
	rec := httptest.NewRecorder()
	MovementVerify(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(stub.verifyCalls) != 1 || !stub.verifyCalls[0] {
		t.Fatalf("expected repair=true forwarded, got %v", stub.verifyCalls)
	}
}
