package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/config"
	"github.com/arnavshah/carehome-shifts-api/pkg/database"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		APIPrefix:     "api/v1",
		JWTSecret:     "integration-test-secret",
		TokenTTL:      time.Hour,
		InvitationTTL: time.Hour,
		QRKeyBits:     1024,
		ChallengeTTL:  time.Minute,
		CapacityMode:  shifts.CapacityBatch,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
	}
}

type api struct {
	t *testing.T
	r http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	r, err := Bootstrap(context.Background(), testConfig(), db, zap.NewNop())
	require.NoError(t, err)
	return &api{t: t, r: r}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type account struct {
	ID    string
	Token string
}

func (a *api) register(first, accountType string) account {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", "", gin.H{
		"fname":       first,
		"lname":       "Test",
		"email":       strings.ToLower(first) + "@example.com",
		"password":    "password123",
		"accountType": accountType,
		"companyName": first + " Ltd",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}](a.t, w)
	return account{ID: session.User.ID, Token: session.Token}
}

type shiftBody struct {
	ID            string            `json:"id"`
	AgentID       string            `json:"agentId"`
	Count         int               `json:"count"`
	AssignedUsers []string          `json:"assignedUsers"`
	IsAccepted    bool              `json:"isAccepted"`
	IsCompleted   bool              `json:"isCompleted"`
	SignedCarers  map[string]string `json:"signedCarers"`
	Version       int               `json:"version"`
}

type world struct {
	*api
	home, agency, carer, nurse account
	typeID                     string
}

func newWorld(t *testing.T) *world {
	a := newAPI(t)
	w := &world{
		api:    a,
		home:   a.register("Oak", "home"),
		agency: a.register("Staffing", "agency"),
		carer:  a.register("Cara", "carer"),
		nurse:  a.register("Nora", "nurse"),
	}

	resp := a.do(http.MethodPost, "/shift-types", w.home.Token, gin.H{
		"shiftTypes": []gin.H{{"name": "Day", "startTime": "08:00", "endTime": "20:00"}},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	catalog := decode[[]struct {
		ID string `json:"id"`
	}](t, resp)
	require.Len(t, catalog, 1)
	w.typeID = catalog[0].ID
	return w
}

func (w *world) createShift(count int, agentID string) shiftBody {
	w.t.Helper()
	resp := w.do(http.MethodPost, "/shifts", w.home.Token, gin.H{
		"shiftType": w.typeID,
		"date":      "2030-01-01",
		"count":     count,
		"agentId":   agentID,
	})
	require.Equal(w.t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[shiftBody](w.t, resp)
}

// linkCarer has the agency invite the carer and the carer accept
func (w *world) linkCarer() {
	w.t.Helper()
	resp := w.do(http.MethodPost, "/invitations", w.agency.Token, gin.H{"receiverId": w.carer.ID})
	require.Equal(w.t, http.StatusCreated, resp.Code, resp.Body.String())
	inv := decode[struct {
		ID string `json:"id"`
	}](w.t, resp)

	resp = w.do(http.MethodPost, "/invitations/"+inv.ID+"/accept", w.carer.Token, nil)
	require.Equal(w.t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestRoot(t *testing.T) {
	a := newAPI(t)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)
}

func TestAuthRequired(t *testing.T) {
	a := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/shifts", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/shifts", "not-a-token", nil).Code)
}

func TestBootstrapAdminAndLogin(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/auth/login", "", gin.H{"email": "admin@example.com", "password": "admin-password"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/login", "", gin.H{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	a.register("Dup", "carer")
	w = a.do(http.MethodPost, "/auth/register", "", gin.H{
		"fname": "Dup", "lname": "Test", "email": "dup@example.com",
		"password": "password123", "accountType": "carer",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestShiftLifecycleOverHTTP(t *testing.T) {
	w := newWorld(t)
	w.linkCarer()
	shift := w.createShift(1, w.agency.ID)
	assert.False(t, shift.IsAccepted)

	resp := w.do(http.MethodPost, "/shifts", w.carer.Token, gin.H{"shiftType": w.typeID, "date": "2030-01-01", "count": 1})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = w.do(http.MethodPatch, "/shifts/"+shift.ID+"/accept", w.carer.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = w.do(http.MethodPatch, "/shifts/"+shift.ID+"/accept", w.agency.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[shiftBody](t, resp).IsAccepted)

	resp = w.do(http.MethodGet, "/shifts/"+shift.ID+"/suggestions", w.agency.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	suggested := decode[struct {
		OpenPlaces  int `json:"openPlaces"`
		Suggestions []struct {
			CarerID string `json:"carerId"`
		} `json:"suggestions"`
	}](t, resp)
	assert.Equal(t, 1, suggested.OpenPlaces)
	require.Len(t, suggested.Suggestions, 1)
	assert.Equal(t, w.carer.ID, suggested.Suggestions[0].CarerID)

	resp = w.do(http.MethodPost, "/shifts/"+shift.ID+"/assign-carers", w.agency.Token, gin.H{"carerIds": []string{w.carer.ID}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assigned := decode[struct {
		Message string    `json:"message"`
		Shift   shiftBody `json:"shift"`
	}](t, resp)
	assert.NotEmpty(t, assigned.Message)
	assert.Equal(t, []string{w.carer.ID}, assigned.Shift.AssignedUsers)
	assert.True(t, assigned.Shift.IsCompleted)

	resp = w.do(http.MethodPost, "/shifts/"+shift.ID+"/assign-carers", w.agency.Token, gin.H{"carerIds": []string{w.carer.ID}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = w.do(http.MethodPost, "/shifts/"+shift.ID+"/assign-carers", w.home.Token, gin.H{"carerIds": []string{w.carer.ID}})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = w.do(http.MethodGet, "/shifts", w.carer.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	views := decode[[]map[string]interface{}](t, resp)
	require.Len(t, views, 1)
	assert.Equal(t, shift.ID, views[0]["id"])
	assert.Nil(t, views[0]["timesheet"])

	resp = w.do(http.MethodPost, "/timesheets", w.carer.Token, gin.H{"shiftId": shift.ID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	ts := decode[struct {
		ID string `json:"id"`
	}](t, resp)

	resp = w.do(http.MethodGet, "/shifts", w.carer.Token, nil)
	views = decode[[]map[string]interface{}](t, resp)
	require.Len(t, views, 1)
	assert.NotNil(t, views[0]["timesheet"])

	resp = w.do(http.MethodPatch, "/timesheets/"+ts.ID+"/approve", w.home.Token, gin.H{"rating": 5})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"approved"`)

	resp = w.do(http.MethodPost, "/shifts/"+shift.ID+"/unassign", w.agency.Token, gin.H{"carerId": w.carer.ID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	unassigned := decode[struct {
		Shift shiftBody `json:"shift"`
	}](t, resp)
	assert.Empty(t, unassigned.Shift.AssignedUsers)
	assert.True(t, unassigned.Shift.IsAccepted)
	assert.False(t, unassigned.Shift.IsCompleted)
}

func TestAssignUsersOverHTTP(t *testing.T) {
	w := newWorld(t)
	shift := w.createShift(2, "")

	resp := w.do(http.MethodPut, "/shifts/"+shift.ID+"/assign-users", w.home.Token, gin.H{"userIds": []string{"u1", "u2", "u3"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = w.do(http.MethodPut, "/shifts/"+shift.ID+"/assign-users", w.agency.Token, gin.H{"userIds": []string{"u1"}})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = w.do(http.MethodPut, "/shifts/missing/assign-users", w.home.Token, gin.H{"userIds": []string{"u1"}})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = w.do(http.MethodPut, "/shifts/"+shift.ID+"/assign-users", w.home.Token, gin.H{"userIds": []string{"u1", "u2"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[shiftBody](t, resp)
	assert.Equal(t, []string{"u1", "u2"}, body.AssignedUsers)
	assert.True(t, body.IsCompleted)
	assert.Equal(t, shift.Version+1, body.Version)

	resp = w.do(http.MethodPut, "/shifts/"+shift.ID+"/assign-users", w.home.Token, gin.H{"userIds": []string{"u2"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestValidateShifts(t *testing.T) {
	w := newWorld(t)

	resp := w.do(http.MethodPost, "/shifts/validate", w.home.Token, gin.H{"shifts": []gin.H{
		{"shiftType": w.typeID, "date": "2030-01-01", "count": 2},
		{"shiftType": "unknown", "date": "2030-01-01", "count": 1},
	}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	ok := decode[struct {
		Valid bool `json:"valid"`
		Stats struct {
			ShiftCount   int `json:"shift_count"`
			SkippedCount int `json:"skipped_count"`
			CarerSlots   int `json:"carer_slots"`
		} `json:"stats"`
	}](t, resp)
	assert.True(t, ok.Valid)
	assert.Equal(t, 1, ok.Stats.ShiftCount)
	assert.Equal(t, 1, ok.Stats.SkippedCount)
	assert.Equal(t, 2, ok.Stats.CarerSlots)

	resp = w.do(http.MethodPost, "/shifts/validate", w.home.Token, gin.H{"shifts": []gin.H{
		{"shiftType": w.typeID, "date": "01/01/2030", "count": 1},
	}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"valid":false`)

	resp = w.do(http.MethodPost, "/shifts/validate", w.nurse.Token, gin.H{"shifts": []gin.H{
		{"shiftType": w.typeID, "date": "2030-01-01", "count": 1},
	}})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = w.do(http.MethodGet, "/shifts", w.home.Token, nil)
	assert.Equal(t, "[]", strings.TrimSpace(resp.Body.String()))
}

func TestCheckinOverHTTP(t *testing.T) {
	w := newWorld(t)
	shift := w.createShift(1, "")
	resp := w.do(http.MethodPut, "/shifts/"+shift.ID+"/assign-users", w.home.Token, gin.H{"userIds": []string{w.carer.ID}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = w.do(http.MethodGet, "/shifts/"+shift.ID+"/qr", w.carer.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = w.do(http.MethodGet, "/shifts/missing/qr", w.nurse.Token, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)

	resp = w.do(http.MethodGet, "/shifts/"+shift.ID+"/qr", w.nurse.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	qr := decode[struct {
		PublicKey string `json:"publicKey"`
		QRImage   string `json:"qrImage"`
	}](t, resp)
	assert.Contains(t, qr.PublicKey, "RSA PUBLIC KEY")
	assert.True(t, strings.HasPrefix(qr.QRImage, "data:image/png;base64,"))

	resp = w.do(http.MethodPost, "/shifts/"+shift.ID+"/verify", w.carer.Token, gin.H{"publicKey": "bm9wZQ==", "carerId": w.carer.ID})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success":false}`, resp.Body.String())

	resp = w.do(http.MethodPost, "/shifts/missing/verify", w.carer.Token, gin.H{"publicKey": "bm9wZQ==", "carerId": w.carer.ID})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	resp = w.do(http.MethodPut, "/checkin/key", w.carer.Token, gin.H{"publicKey": base64.StdEncoding.EncodeToString(pub)})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = w.do(http.MethodPost, "/shifts/"+shift.ID+"/challenge", w.nurse.Token, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	challenge := decode[struct {
		ID    string `json:"challengeId"`
		Nonce string `json:"nonce"`
	}](t, resp)

	sig := base64.StdEncoding.EncodeToString(ed25519.Sign(priv, []byte(challenge.Nonce)))
	resp = w.do(http.MethodPost, "/checkin/challenges/"+challenge.ID, w.carer.Token, gin.H{"signature": sig})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"success":true}`, resp.Body.String())

	resp = w.do(http.MethodPost, "/checkin/challenges/"+challenge.ID, w.carer.Token, gin.H{"signature": sig})
	assert.JSONEq(t, `{"success":false}`, resp.Body.String())

	resp = w.do(http.MethodPost, "/checkin/challenges/missing", w.carer.Token, gin.H{"signature": sig})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = w.do(http.MethodGet, "/shifts/"+shift.ID, w.home.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, decode[shiftBody](t, resp).SignedCarers, w.carer.ID)
}

func TestStaffInvitationsOverHTTP(t *testing.T) {
	w := newWorld(t)

	resp := w.do(http.MethodPost, "/home-staff-invitations", w.carer.Token, gin.H{"email": "nora@example.com", "accountType": "nurse"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = w.do(http.MethodPost, "/home-staff-invitations", w.home.Token, gin.H{"email": "nora@example.com", "accountType": "nurse"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	inv := decode[struct {
		ID          string `json:"id"`
		Token       string `json:"invToken"`
		CompanyName string `json:"companyName"`
	}](t, resp)
	assert.Equal(t, "Oak Ltd", inv.CompanyName)

	resp = w.do(http.MethodGet, "/home-staff-invitations/token/"+inv.Token, "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = w.do(http.MethodPatch, "/home-staff-invitations/"+inv.ID, w.home.Token, gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = w.do(http.MethodPatch, "/home-staff-invitations/"+inv.ID, w.home.Token, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = w.do(http.MethodPatch, "/home-staff-invitations/"+inv.ID, w.nurse.Token, gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = w.do(http.MethodDelete, "/home-staff-invitations/"+inv.ID, w.agency.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = w.do(http.MethodDelete, "/home-staff-invitations/"+inv.ID, w.home.Token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRosterOverHTTP(t *testing.T) {
	w := newWorld(t)
	w.linkCarer()

	resp := w.do(http.MethodGet, "/users/linked?accountType=carer", w.agency.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	grouped := decode[map[string][]struct {
		ID string `json:"id"`
	}](t, resp)
	require.Len(t, grouped["carer"], 1)
	assert.Equal(t, w.carer.ID, grouped["carer"][0].ID)

	resp = w.do(http.MethodPatch, "/users/unlink", w.carer.Token, gin.H{"linkedUserId": w.agency.ID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = w.do(http.MethodGet, "/users/linked", w.agency.Token, nil)
	assert.JSONEq(t, `{}`, resp.Body.String())

	resp = w.do(http.MethodGet, "/users/search?accountType=home&q=oak", w.agency.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), w.home.ID)
}
