package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetops/go-fleet-backend/internal/domain"
	"github.com/fleetops/go-fleet-backend/internal/http/middleware"
	"github.com/fleetops/go-fleet-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

//
// Fakes
//

type fakeAllocationService struct {
	createID  string
	createErr error
	updateErr error
	deleteErr error
	history   []domain.Allocation
	historyErr error

	gotCreate  *domain.AllocationInput
	gotUpdate  *domain.AllocationInput
	gotID      primitive.ObjectID
	gotFilter  *domain.HistoryFilter
}

func (f *fakeAllocationService) Create(_ context.Context, in domain.AllocationInput) (string, error) {
	f.gotCreate = &in
	return f.createID, f.createErr
}

func (f *fakeAllocationService) Update(_ context.Context, id primitive.ObjectID, in domain.AllocationInput) error {
	f.gotID = id
	f.gotUpdate = &in
	return f.updateErr
}

func (f *fakeAllocationService) Delete(_ context.Context, id primitive.ObjectID) error {
	f.gotID = id
	return f.deleteErr
}

func (f *fakeAllocationService) History(_ context.Context, filter domain.HistoryFilter) ([]domain.Allocation, error) {
	f.gotFilter = &filter
	return f.history, f.historyErr
}

type fakeIdemStore struct {
	rec    *domain.IdempotencyRecord
	getErr error

	recordedKey    string
	recordedID     string
	recordedStatus int
	recordErr      error
}

func (f *fakeIdemStore) Get(_ context.Context, _ string, _ time.Time) (*domain.IdempotencyRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.rec, nil
}

func (f *fakeIdemStore) Record(_ context.Context, key, allocationID string, status int) error {
	f.recordedKey = key
	f.recordedID = allocationID
	f.recordedStatus = status
	return f.recordErr
}

//
// Harness
//

func newRouter(h *Handlers, lookup middleware.IdempotencyLookup) *gin.Engine {
	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, lookup))
	r.POST("/allocations", h.CreateAllocation)
	r.PUT("/allocations/:id", h.UpdateAllocation)
	r.DELETE("/allocations/:id", h.DeleteAllocation)
	r.GET("/allocations/history", h.AllocationHistory)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return e
}

const validBody = `{"employee_id":7,"vehicle_id":456,"allocation_date":"2024-10-23"}`

//
// Create
//

func TestCreateAllocation_Success(t *testing.T) {
	svc := &fakeAllocationService{createID: "671a0f7c9b1e8b6d1c2f3a4b"}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
	var resp CreateAllocationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "671a0f7c9b1e8b6d1c2f3a4b" {
		t.Errorf("id = %q", resp.ID)
	}
	if svc.gotCreate == nil {
		t.Fatal("service not called")
	}
	if svc.gotCreate.EmployeeID != 7 || svc.gotCreate.VehicleID != 456 {
		t.Errorf("input = %+v", *svc.gotCreate)
	}
	wantDate := time.Date(2024, 10, 23, 0, 0, 0, 0, time.UTC)
	if !svc.gotCreate.AllocationDate.Equal(wantDate) {
		t.Errorf("date = %v, want %v", svc.gotCreate.AllocationDate, wantDate)
	}
}

func TestCreateAllocation_BadJSON(t *testing.T) {
	svc := &fakeAllocationService{}
	r := newRouter(New(svc, nil), nil)

	for name, body := range map[string]string{
		"empty":           ``,
		"missing vehicle": `{"employee_id":7,"allocation_date":"2024-10-23"}`,
		"zero employee":   `{"employee_id":0,"vehicle_id":1,"allocation_date":"2024-10-23"}`,
		"negative id":     `{"employee_id":-1,"vehicle_id":1,"allocation_date":"2024-10-23"}`,
		"bad date":        `{"employee_id":7,"vehicle_id":1,"allocation_date":"23-10-2024"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/allocations", body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if e := decodeError(t, w); e.Code != ErrCodeBadRequest {
				t.Errorf("code = %q", e.Code)
			}
		})
	}
	if svc.gotCreate != nil {
		t.Error("service called for invalid payload")
	}
}

func TestCreateAllocation_Conflict(t *testing.T) {
	svc := &fakeAllocationService{createErr: services.ErrVehicleConflict}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, nil)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeConflict {
		t.Errorf("code = %q", e.Code)
	}
}

func TestCreateAllocation_PastDate(t *testing.T) {
	svc := &fakeAllocationService{createErr: services.ErrPastDate}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodePastDate {
		t.Errorf("code = %q", e.Code)
	}
}

func TestCreateAllocation_StorageUnavailable(t *testing.T) {
	svc := &fakeAllocationService{createErr: services.ErrStorageUnavailable}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeUnavailable {
		t.Errorf("code = %q", e.Code)
	}
}

func TestCreateAllocation_RecordsIdempotencyOutcome(t *testing.T) {
	svc := &fakeAllocationService{createID: "671a0f7c9b1e8b6d1c2f3a4b"}
	store := &fakeIdemStore{}
	r := newRouter(New(svc, store), func(context.Context, string, time.Time) (bool, error) {
		return false, nil
	})

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, map[string]string{
		middleware.HeaderIdempotencyKey: "retry-key-1",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if store.recordedKey != "retry-key-1" || store.recordedID != "671a0f7c9b1e8b6d1c2f3a4b" {
		t.Errorf("recorded (%q, %q)", store.recordedKey, store.recordedID)
	}
	if store.recordedStatus != http.StatusCreated {
		t.Errorf("recorded status = %d", store.recordedStatus)
	}
}

func TestCreateAllocation_ReplayServesStoredResult(t *testing.T) {
	svc := &fakeAllocationService{createID: "should-not-be-used"}
	store := &fakeIdemStore{rec: &domain.IdempotencyRecord{
		Key:          "retry-key-1",
		AllocationID: "671a0f7c9b1e8b6d1c2f3a4b",
		Status:       http.StatusCreated,
	}}
	r := newRouter(New(svc, store), func(context.Context, string, time.Time) (bool, error) {
		return true, nil
	})

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, map[string]string{
		middleware.HeaderIdempotencyKey: "retry-key-1",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var resp CreateAllocationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "671a0f7c9b1e8b6d1c2f3a4b" {
		t.Errorf("id = %q, want stored id", resp.ID)
	}
	if svc.gotCreate != nil {
		t.Error("create ran despite replay")
	}
}

func TestCreateAllocation_ReplayFallsBackWhenRecordMissing(t *testing.T) {
	svc := &fakeAllocationService{createID: "671a0f7c9b1e8b6d1c2f3a4c"}
	store := &fakeIdemStore{getErr: errors.New("no documents")}
	r := newRouter(New(svc, store), func(context.Context, string, time.Time) (bool, error) {
		return true, nil
	})

	w := doJSON(t, r, http.MethodPost, "/allocations", validBody, map[string]string{
		middleware.HeaderIdempotencyKey: "retry-key-2",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.gotCreate == nil {
		t.Error("create should run when the stored record is gone")
	}
}

//
// Update
//

func TestUpdateAllocation_Success(t *testing.T) {
	svc := &fakeAllocationService{}
	r := newRouter(New(svc, nil), nil)
	id := primitive.NewObjectID()

	w := doJSON(t, r, http.MethodPut, "/allocations/"+id.Hex(), validBody, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if svc.gotID != id {
		t.Errorf("id = %v, want %v", svc.gotID, id)
	}
	if svc.gotUpdate == nil || svc.gotUpdate.VehicleID != 456 {
		t.Errorf("update input = %+v", svc.gotUpdate)
	}
}

func TestUpdateAllocation_BadID(t *testing.T) {
	svc := &fakeAllocationService{}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPut, "/allocations/not-an-objectid", validBody, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if svc.gotUpdate != nil {
		t.Error("service called with malformed id")
	}
}

func TestUpdateAllocation_NotFound(t *testing.T) {
	svc := &fakeAllocationService{updateErr: services.ErrAllocationNotFound}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPut, "/allocations/"+primitive.NewObjectID().Hex(), validBody, nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeNotFound {
		t.Errorf("code = %q", e.Code)
	}
}

func TestUpdateAllocation_Frozen(t *testing.T) {
	svc := &fakeAllocationService{updateErr: services.ErrPastDate}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodPut, "/allocations/"+primitive.NewObjectID().Hex(), validBody, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodePastDate {
		t.Errorf("code = %q", e.Code)
	}
}

//
// Delete
//

func TestDeleteAllocation_Success(t *testing.T) {
	svc := &fakeAllocationService{}
	r := newRouter(New(svc, nil), nil)
	id := primitive.NewObjectID()

	w := doJSON(t, r, http.MethodDelete, "/allocations/"+id.Hex(), "", nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if svc.gotID != id {
		t.Errorf("id = %v", svc.gotID)
	}
}

func TestDeleteAllocation_NotFound(t *testing.T) {
	svc := &fakeAllocationService{deleteErr: services.ErrAllocationNotFound}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodDelete, "/allocations/"+primitive.NewObjectID().Hex(), "", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteAllocation_Frozen(t *testing.T) {
	svc := &fakeAllocationService{deleteErr: services.ErrPastDate}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodDelete, "/allocations/"+primitive.NewObjectID().Hex(), "", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

//
// History
//

func TestAllocationHistory_ForwardsFilter(t *testing.T) {
	svc := &fakeAllocationService{history: []domain.Allocation{
		{EmployeeID: 7, VehicleID: 456},
	}}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodGet,
		"/allocations/history?employee_id=7&vehicle_id=456&date_from=2024-10-01&date_to=2024-10-31", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	f := svc.gotFilter
	if f == nil {
		t.Fatal("service not called")
	}
	if f.EmployeeID != 7 || f.VehicleID != 456 {
		t.Errorf("filter ids = (%d, %d)", f.EmployeeID, f.VehicleID)
	}
	if f.DateFrom == nil || f.DateTo == nil {
		t.Fatal("date bounds not forwarded")
	}
	if got := f.DateFrom.Format("2006-01-02"); got != "2024-10-01" {
		t.Errorf("date_from = %s", got)
	}

	var resp HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || len(resp.Allocations) != 1 {
		t.Errorf("count = %d, allocations = %d", resp.Count, len(resp.Allocations))
	}
}

func TestAllocationHistory_NoFilters(t *testing.T) {
	svc := &fakeAllocationService{}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodGet, "/allocations/history", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	f := svc.gotFilter
	if f == nil {
		t.Fatal("service not called")
	}
	if f.EmployeeID != 0 || f.VehicleID != 0 || f.DateFrom != nil || f.DateTo != nil {
		t.Errorf("filter = %+v, want zero value", *f)
	}
}

func TestAllocationHistory_BadDate(t *testing.T) {
	svc := &fakeAllocationService{}
	r := newRouter(New(svc, nil), nil)

	for _, q := range []string{"date_from=10/01/2024", "date_to=notadate"} {
		w := doJSON(t, r, http.MethodGet, "/allocations/history?"+q, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
	if svc.gotFilter != nil {
		t.Error("service called with malformed date")
	}
}

func TestAllocationHistory_StorageUnavailable(t *testing.T) {
	svc := &fakeAllocationService{historyErr: services.ErrStorageUnavailable}
	r := newRouter(New(svc, nil), nil)

	w := doJSON(t, r, http.MethodGet, "/allocations/history", "", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
