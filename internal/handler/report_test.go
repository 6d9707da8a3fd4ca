package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
)

type fakeImageStore struct {
	saved   []string
	removed []string
}

func (f *fakeImageStore) SaveReportImage(fh *multipart.FileHeader) (string, error) {
	url := "/uploads/reports/" + fh.Filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeImageStore) Remove(urlPath string) {
	f.removed = append(f.removed, urlPath)
}

func seedReport(t *testing.T, store *fakeReportStore, userID uint64, level string) model.FloodReport {
	t.Helper()
	rep := model.FloodReport{
		UserID:      userID,
		Location:    model.Location{Lat: 6.91, Lng: 79.86, Address: "Wellawatte"},
		WaterLevel:  level,
		Description: "water rising near the canal",
	}
	if err := store.Create(context.Background(), &rep); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return rep
}

func reportIDContext(t *testing.T, e *echo.Echo, method, id, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newContext(t, e, method, "/api/reports/"+id, body, userID, role)
	c.SetPath("/api/reports/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestReportCreateAndGet(t *testing.T) {
	e := newEcho()
	store := newFakeReportStore()
	h := &ReportHandler{Reports: store, Images: &fakeImageStore{}}

	body := `{"lat":6.91,"lng":79.86,"address":"Wellawatte","waterLevel":"high","description":"road impassable"}`
	c, rec := newContext(t, e, http.MethodPost, "/api/reports", body, 10, model.RoleUser)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	rep, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("load created: %v", err)
	}
	if rep.Status != model.ReportPending {
		t.Fatalf("new report status = %q, want pending", rep.Status)
	}
	if rep.UserID != 10 {
		t.Fatalf("report owner = %d, want 10", rep.UserID)
	}

	c, rec = reportIDContext(t, e, http.MethodGet, "1", "", 0, "")
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
}

func TestReportCreateRejectsBadWaterLevel(t *testing.T) {
	e := newEcho()
	h := &ReportHandler{Reports: newFakeReportStore(), Images: &fakeImageStore{}}

	body := `{"lat":1,"lng":2,"address":"x","waterLevel":"tsunami","description":"d"}`
	c, rec := newContext(t, e, http.MethodPost, "/api/reports", body, 10, model.RoleUser)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestReportCreateRequiresCoordinates(t *testing.T) {
	e := newEcho()
	store := newFakeReportStore()
	h := &ReportHandler{Reports: store, Images: &fakeImageStore{}}

	bodies := []string{
		`{"address":"Colombo","waterLevel":"high","description":"street flooded"}`,
		`{"lat":6.91,"address":"Colombo","waterLevel":"high","description":"street flooded"}`,
		`{"lng":79.86,"address":"Colombo","waterLevel":"high","description":"street flooded"}`,
	}
	for _, body := range bodies {
		c, rec := newContext(t, e, http.MethodPost, "/api/reports", body, 10, model.RoleUser)
		if err := h.Create(c); err != nil {
			t.Fatalf("create: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if _, err := store.GetByID(context.Background(), 1); err == nil {
		t.Fatal("report without coordinates was stored")
	}

	// zero is a real coordinate and must still pass
	body := `{"lat":0,"lng":0,"address":"Null Island","waterLevel":"low","description":"d"}`
	c, rec := newContext(t, e, http.MethodPost, "/api/reports", body, 10, model.RoleUser)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("zero coords status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestReportUpdateOwnership(t *testing.T) {
	e := newEcho()
	store := newFakeReportStore()
	seedReport(t, store, 10, model.WaterMedium)
	h := &ReportHandler{Reports: store, Images: &fakeImageStore{}}

	body := `{"description":"edited"}`

	c, rec := reportIDContext(t, e, http.MethodPut, "1", body, 11, model.RoleUser)
	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger update status = %d, want 403", rec.Code)
	}

	c, rec = reportIDContext(t, e, http.MethodPut, "1", body, 10, model.RoleUser)
	if err := h.Update(c); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	rep, _ := store.GetByID(context.Background(), 1)
	if rep.Description != "edited" {
		t.Fatalf("description = %q, want edited", rep.Description)
	}
	if rep.Status != model.ReportPending {
		t.Fatalf("generic update touched status: %q", rep.Status)
	}
}

func TestReportVerifyIdempotent(t *testing.T) {
	e := newEcho()
	store := newFakeReportStore()
	seedReport(t, store, 10, model.WaterHigh)
	h := &ReportHandler{Reports: store, Images: &fakeImageStore{}}

	for i := 0; i < 2; i++ {
		c, rec := reportIDContext(t, e, http.MethodPut, "1", "", 1, model.RoleAdmin)
		if err := h.Verify(c); err != nil {
			t.Fatalf("verify #%d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("verify #%d status = %d, want 200", i+1, rec.Code)
		}
		rep, _ := store.GetByID(context.Background(), 1)
		if rep.Status != model.ReportVerified {
			t.Fatalf("verify #%d status = %q, want verified", i+1, rep.Status)
		}
	}
}

func TestReportDeleteRemovesImage(t *testing.T) {
	e := newEcho()
	store := newFakeReportStore()
	images := &fakeImageStore{}
	rep := seedReport(t, store, 10, model.WaterLow)
	url := "/uploads/reports/abc.jpg"
	rep.ImageURL = &url
	store.byID[rep.ID] = rep
	h := &ReportHandler{Reports: store, Images: images}

	c, rec := reportIDContext(t, e, http.MethodDelete, "1", "", 10, model.RoleUser)
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", rec.Code)
	}
	if _, err := store.GetByID(context.Background(), 1); err == nil {
		t.Fatal("report still present after delete")
	}
	if len(images.removed) != 1 || images.removed[0] != url {
		t.Fatalf("image not removed: %v", images.removed)
	}
}
