package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hannakang/schedhub/internal/auth"
	"github.com/hannakang/schedhub/internal/domain/assignment"
	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/http/handlers"
	"github.com/hannakang/schedhub/internal/http/middlewares"
)

// fakeAssignmentsStore mirrors the transactional repo: it refuses unknown
// users and schedules, and rejects duplicate pairings.
type fakeAssignmentsStore struct {
	knownUsers     map[string]bool
	knownSchedules map[string]bool
	items          map[string]assignment.Assignment
}

func newFakeAssignmentsStore(userIDs, scheduleIDs []string) *fakeAssignmentsStore {
	users := make(map[string]bool, len(userIDs))
	schedules := make(map[string]bool, len(scheduleIDs))

	for _, id := range userIDs {
		users[id] = true
	}

	for _, id := range scheduleIDs {
		schedules[id] = true
	}

	return &fakeAssignmentsStore{
		knownUsers:     users,
		knownSchedules: schedules,
		items:          make(map[string]assignment.Assignment),
	}
}

func (f *fakeAssignmentsStore) Create(ctx context.Context, userID, scheduleID string) (assignment.Assignment, error) {
	if !f.knownUsers[userID] {
		return assignment.Assignment{}, user.ErrNotFound
	}

	if !f.knownSchedules[scheduleID] {
		return assignment.Assignment{}, schedule.ErrNotFound
	}

	for _, a := range f.items {
		if a.UserID == userID && a.ScheduleID == scheduleID {
			return assignment.Assignment{}, assignment.ErrAlreadyAssigned
		}
	}

	a := assignment.New(userID, scheduleID)
	f.items[a.ID] = a

	return a, nil
}

func (f *fakeAssignmentsStore) GetByUserID(ctx context.Context, userID string) (assignment.Assignment, error) {
	for _, a := range f.items {
		if a.UserID == userID {
			return a, nil
		}
	}

	return assignment.Assignment{}, assignment.ErrNotFound
}

func (f *fakeAssignmentsStore) ListBySchedule(ctx context.Context, scheduleID string) ([]assignment.Assignment, error) {
	out := []assignment.Assignment{}

	for _, a := range f.items {
		if a.ScheduleID == scheduleID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (f *fakeAssignmentsStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return assignment.ErrNotFound
	}

	delete(f.items, id)

	return nil
}

type assignmentsRig struct {
	router     *gin.Engine
	store      *fakeAssignmentsStore
	managerID  string
	scheduleID string
	adminToken string
	userToken  string
}

func newAssignmentsRig(t *testing.T) *assignmentsRig {
	t.Helper()

	jwt := auth.NewManager(testJWTSecret, time.Hour)

	adminToken, err := jwt.Issue("root", user.RoleAdmin)

	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}

	userToken, err := jwt.Issue("alice", user.RoleUser)

	if err != nil {
		t.Fatalf("issue user token: %v", err)
	}

	managerID := uuid.NewString()
	scheduleID := uuid.NewString()

	store := newFakeAssignmentsStore([]string{managerID}, []string{scheduleID})

	h := handlers.NewAssignmentsHandler(store)
	authMw := middlewares.NewAuthMiddleware(jwt)

	r := gin.New()
	admin := r.Group("/", authMw.RequireAuth(), authMw.RequireRole(user.RoleAdmin))

	admin.POST("/managers", h.AddManager)
	admin.DELETE("/managers", h.RemoveManager)
	admin.GET("/schedules/:id/managers", h.ListManagers)

	return &assignmentsRig{
		router:     r,
		store:      store,
		managerID:  managerID,
		scheduleID: scheduleID,
		adminToken: adminToken,
		userToken:  userToken,
	}
}

func (rig *assignmentsRig) addBody() string {
	b, _ := json.Marshal(gin.H{
		"managerId":  rig.managerID,
		"scheduleId": rig.scheduleID,
	})

	return string(b)
}

func TestAddManagerRequiresAdmin(t *testing.T) {
	rig := newAssignmentsRig(t)

	w := doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.userToken, rig.addBody())

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
	}

	if got := errCode(t, w); got != "forbidden" {
		t.Errorf("got code %q, want forbidden", got)
	}

	if len(rig.store.items) != 0 {
		t.Error("forbidden request must not write")
	}
}

func TestAddManager(t *testing.T) {
	rig := newAssignmentsRig(t)

	w := doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.adminToken, rig.addBody())

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var a assignment.Assignment

	if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if a.UserID != rig.managerID || a.ScheduleID != rig.scheduleID {
		t.Errorf("got %+v, want userId=%s scheduleId=%s", a, rig.managerID, rig.scheduleID)
	}

	// adding the same pairing again conflicts

	w = doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.adminToken, rig.addBody())

	if w.Code != http.StatusConflict {
		t.Fatalf("repeat add: got status %d, body=%s", w.Code, w.Body.String())
	}

	if got := errCode(t, w); got != "already_assigned" {
		t.Errorf("got code %q, want already_assigned", got)
	}
}

func TestAddManagerUnknownTargets(t *testing.T) {
	rig := newAssignmentsRig(t)

	tests := []struct {
		name       string
		managerID  string
		scheduleID string
	}{
		{name: "unknown_user", managerID: uuid.NewString(), scheduleID: rig.scheduleID},
		{name: "unknown_schedule", managerID: rig.managerID, scheduleID: uuid.NewString()},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			b, _ := json.Marshal(gin.H{
				"managerId":  tt.managerID,
				"scheduleId": tt.scheduleID,
			})

			w := doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.adminToken, string(b))

			if w.Code != http.StatusNotFound {
				t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAddManagerValidation(t *testing.T) {
	rig := newAssignmentsRig(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing_fields", body: `{}`},
		{name: "not_a_uuid", body: `{"managerId":"abc","scheduleId":"def"}`},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.adminToken, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRemoveManager(t *testing.T) {
	rig := newAssignmentsRig(t)

	if w := doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.adminToken, rig.addBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed add: got status %d", w.Code)
	}

	body := `{"managerId":"` + rig.managerID + `"}`

	w := doAuthedJSON(rig.router, http.MethodDelete, "/managers", rig.adminToken, body)

	if w.Code != http.StatusNoContent {
		t.Fatalf("remove: got status %d, body=%s", w.Code, w.Body.String())
	}

	// removing again is a 404

	w = doAuthedJSON(rig.router, http.MethodDelete, "/managers", rig.adminToken, body)

	if w.Code != http.StatusNotFound {
		t.Fatalf("second remove: got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestListManagers(t *testing.T) {
	rig := newAssignmentsRig(t)

	if w := doAuthedJSON(rig.router, http.MethodPost, "/managers", rig.adminToken, rig.addBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed add: got status %d", w.Code)
	}

	w := doAuthedJSON(rig.router, http.MethodGet,
		"/schedules/"+rig.scheduleID+"/managers", rig.adminToken, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []assignment.Assignment `json:"items"`
		Count int                     `json:"count"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.Count != 1 || len(resp.Items) != 1 {
		t.Fatalf("got count=%d items=%d, want 1", resp.Count, len(resp.Items))
	}

	if resp.Items[0].UserID != rig.managerID {
		t.Errorf("got userId %q, want %q", resp.Items[0].UserID, rig.managerID)
	}
}
