package handler

// Shared scaffolding for the handler tests: an Echo instance wired with the
// request validator, helpers for building authenticated requests, and
// in-memory fakes for the stores.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/repository"
)

type testValidator struct{ v *validator.Validate }

func (tv testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = testValidator{v: validator.New()}
	return e
}

// newContext builds an echo.Context carrying the given identity claims, the
// way the JWT middleware would set them.
func newContext(t *testing.T, e *echo.Echo, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", float64(userID)) // JSON claims arrive as float64
		c.Set("role", role)
	}
	return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return env
}

// ----- SOS fake -----

type fakeSOSStore struct {
	nextID uint64
	byID   map[uint64]model.SOSRequest
}

func newFakeSOSStore() *fakeSOSStore {
	return &fakeSOSStore{byID: map[uint64]model.SOSRequest{}}
}

func (f *fakeSOSStore) Create(_ context.Context, req *model.SOSRequest) error {
	f.nextID++
	req.ID = f.nextID
	req.Status = model.SOSPending
	f.byID[req.ID] = *req
	return nil
}

func (f *fakeSOSStore) GetByID(_ context.Context, id uint64) (model.SOSRequest, error) {
	sr, ok := f.byID[id]
	if !ok {
		return model.SOSRequest{}, repository.ErrNotFound
	}
	return sr, nil
}

func (f *fakeSOSStore) List(_ context.Context, fl repository.SOSFilter) ([]model.SOSRequest, error) {
	out := []model.SOSRequest{}
	for _, sr := range f.byID {
		if fl.UserID != 0 && sr.UserID != fl.UserID {
			continue
		}
		if fl.Status != "" && sr.Status != fl.Status {
			continue
		}
		if fl.Type != "" && sr.Type != fl.Type {
			continue
		}
		out = append(out, sr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeSOSStore) Update(_ context.Context, id uint64, upd repository.SOSUpdate) (model.SOSRequest, error) {
	sr, ok := f.byID[id]
	if !ok {
		return model.SOSRequest{}, repository.ErrNotFound
	}
	if upd.Type != nil {
		sr.Type = *upd.Type
	}
	if upd.Location != nil {
		sr.Location = *upd.Location
	}
	if upd.Description != nil {
		sr.Description = upd.Description
	}
	f.byID[id] = sr
	return sr, nil
}

func (f *fakeSOSStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSOSStore) Accept(_ context.Context, id, volunteerID uint64) (model.SOSRequest, error) {
	sr, ok := f.byID[id]
	if !ok {
		return model.SOSRequest{}, repository.ErrNotFound
	}
	if sr.Status != model.SOSPending {
		return model.SOSRequest{}, repository.ErrInvalidState
	}
	sr.Status = model.SOSAccepted
	sr.AssignedVolunteer = &volunteerID
	f.byID[id] = sr
	return sr, nil
}

func (f *fakeSOSStore) Complete(_ context.Context, id uint64) (model.SOSRequest, error) {
	sr, ok := f.byID[id]
	if !ok {
		return model.SOSRequest{}, repository.ErrNotFound
	}
	if sr.Status != model.SOSAccepted {
		return model.SOSRequest{}, repository.ErrInvalidState
	}
	sr.Status = model.SOSCompleted
	f.byID[id] = sr
	return sr, nil
}

// ----- report fake -----

type fakeReportStore struct {
	nextID uint64
	byID   map[uint64]model.FloodReport
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{byID: map[uint64]model.FloodReport{}}
}

func (f *fakeReportStore) Create(_ context.Context, rep *model.FloodReport) error {
	f.nextID++
	rep.ID = f.nextID
	rep.Status = model.ReportPending
	f.byID[rep.ID] = *rep
	return nil
}

func (f *fakeReportStore) GetByID(_ context.Context, id uint64) (model.FloodReport, error) {
	rep, ok := f.byID[id]
	if !ok {
		return model.FloodReport{}, repository.ErrNotFound
	}
	return rep, nil
}

func (f *fakeReportStore) List(_ context.Context, fl repository.ReportFilter) ([]model.FloodReport, error) {
	out := []model.FloodReport{}
	for _, rep := range f.byID {
		if fl.Status != "" && rep.Status != fl.Status {
			continue
		}
		if fl.WaterLevel != "" && rep.WaterLevel != fl.WaterLevel {
			continue
		}
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeReportStore) Update(_ context.Context, id uint64, upd repository.ReportUpdate) (model.FloodReport, error) {
	rep, ok := f.byID[id]
	if !ok {
		return model.FloodReport{}, repository.ErrNotFound
	}
	if upd.Location != nil {
		rep.Location = *upd.Location
	}
	if upd.WaterLevel != nil {
		rep.WaterLevel = *upd.WaterLevel
	}
	if upd.Description != nil {
		rep.Description = *upd.Description
	}
	if upd.ImageURL != nil {
		rep.ImageURL = upd.ImageURL
	}
	f.byID[id] = rep
	return rep, nil
}

func (f *fakeReportStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReportStore) Verify(_ context.Context, id uint64) (model.FloodReport, error) {
	rep, ok := f.byID[id]
	if !ok {
		return model.FloodReport{}, repository.ErrNotFound
	}
	rep.Status = model.ReportVerified
	f.byID[id] = rep
	return rep, nil
}

// ----- shelter fake -----

type fakeShelterStore struct {
	nextID uint64
	byID   map[uint64]model.Shelter
}

func newFakeShelterStore() *fakeShelterStore {
	return &fakeShelterStore{byID: map[uint64]model.Shelter{}}
}

func (f *fakeShelterStore) Create(_ context.Context, s *model.Shelter) error {
	f.nextID++
	s.ID = f.nextID
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeShelterStore) GetByID(_ context.Context, id uint64) (model.Shelter, error) {
	s, ok := f.byID[id]
	if !ok {
		return model.Shelter{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeShelterStore) List(_ context.Context, active *bool) ([]model.Shelter, error) {
	out := []model.Shelter{}
	for _, s := range f.byID {
		if active != nil && s.IsActive != *active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeShelterStore) Update(_ context.Context, id uint64, upd repository.ShelterUpdate) (model.Shelter, error) {
	s, ok := f.byID[id]
	if !ok {
		return model.Shelter{}, repository.ErrNotFound
	}
	if upd.Capacity != nil {
		if *upd.Capacity < s.CurrentOccupancy {
			return model.Shelter{}, repository.ErrCapacityExceeded
		}
		s.Capacity = *upd.Capacity
	}
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Location != nil {
		s.Location = *upd.Location
	}
	if upd.Phone != nil {
		s.Phone = *upd.Phone
	}
	if upd.Facilities != nil {
		s.Facilities = upd.Facilities
	}
	if upd.IsActive != nil {
		s.IsActive = *upd.IsActive
	}
	f.byID[id] = s
	return s, nil
}

func (f *fakeShelterStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeShelterStore) UpdateOccupancy(_ context.Context, id uint64, occupancy int) (model.Shelter, error) {
	s, ok := f.byID[id]
	if !ok {
		return model.Shelter{}, repository.ErrNotFound
	}
	if occupancy > s.Capacity {
		return model.Shelter{}, repository.ErrCapacityExceeded
	}
	s.CurrentOccupancy = occupancy
	f.byID[id] = s
	return s, nil
}
