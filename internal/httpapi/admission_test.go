package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/quillboard/admission/internal/admission"
	"github.com/quillboard/admission/internal/catalog"
	"github.com/quillboard/admission/internal/db"
	"github.com/quillboard/admission/internal/engine"
	"github.com/quillboard/admission/internal/models"
	"github.com/quillboard/admission/internal/store"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, rules []engine.Rule) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	svc := admission.NewService(store.New(conn), catalog.New(rules), func() time.Time { return testNow })
	r := gin.New()
	RegisterRoutes(r, conn, svc)
	return r, conn
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, errMarshal := json.Marshal(body)
	if errMarshal != nil {
		t.Fatalf("marshal request: %v", errMarshal)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newUserCommentRule() engine.Rule {
	return engine.Rule{
		ActionType:        engine.ActionComment,
		ItemsPerTimeframe: 1,
		TimeframeLength:   1,
		TimeframeUnit:     engine.UnitDays,
		Thresholds:        []engine.Threshold{{Field: engine.FieldKarma, Op: engine.CmpLT, Value: 5}},
		Message:           "New users can write one comment a day.",
	}
}

func TestCheck_AllowedAndLimited(t *testing.T) {
	r, conn := newTestRouter(t, []engine.Rule{newUserCommentRule()})

	user := models.User{ID: "newbie", Karma: 0}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	post := models.Post{ID: "post-1", AuthorID: "someone-else", PostedAt: testNow.Add(-48 * time.Hour)}
	if err := conn.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	w := postJSON(t, r, "/v1/admission/check", gin.H{"user_id": "newbie", "action": "comment", "post_id": "post-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with no history, got %d body=%s", w.Code, w.Body.String())
	}

	comment := models.Comment{ID: "comment-1", AuthorID: "newbie", PostID: "post-1", PostedAt: testNow.Add(-time.Hour)}
	if err := conn.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	w = postJSON(t, r, "/v1/admission/check", gin.H{"user_id": "newbie", "action": "comment", "post_id": "post-1"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the quota filled, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Allowed        bool      `json:"allowed"`
		NextEligibleAt time.Time `json:"next_eligible_at"`
		Message        string    `json:"message"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.Allowed {
		t.Fatal("expected allowed=false")
	}
	want := testNow.Add(23 * time.Hour)
	if !resp.NextEligibleAt.Equal(want) {
		t.Fatalf("expected next_eligible_at=%s, got %s", want, resp.NextEligibleAt)
	}
	if resp.Message != "New users can write one comment a day." {
		t.Fatalf("expected the rule message, got %q", resp.Message)
	}
}

func TestCheck_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing user", gin.H{"action": "post"}},
		{"unknown action", gin.H{"user_id": "u", "action": "poll"}},
		{"empty body", gin.H{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := postJSON(t, r, "/v1/admission/check", tc.body); w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestCheck_ConfigErrorDenies(t *testing.T) {
	bad := engine.Rule{ActionType: engine.ActionPost, ItemsPerTimeframe: 1, TimeframeLength: 1, TimeframeUnit: "fortnights"}
	r, conn := newTestRouter(t, []engine.Rule{bad})

	user := models.User{ID: "user-1"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w := postJSON(t, r, "/v1/admission/check", gin.H{"user_id": "user-1", "action": "post"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected a config error to deny with 500, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestVoteObserved(t *testing.T) {
	r, conn := newTestRouter(t, []engine.Rule{newUserCommentRule()})

	user := models.User{ID: "author", Karma: 0}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	post := models.Post{ID: "post-1", AuthorID: "someone-else", PostedAt: testNow.Add(-48 * time.Hour)}
	if err := conn.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	w := postJSON(t, r, "/v1/admission/vote-observed", gin.H{"user_id": "author"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Flagged bool `json:"flagged_for_review"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if resp.Flagged {
		t.Fatal("expected the baseline observation to not flag")
	}

	comment := models.Comment{ID: "comment-1", AuthorID: "author", PostID: "post-1", PostedAt: testNow.Add(-time.Minute)}
	if err := conn.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	w = postJSON(t, r, "/v1/admission/vote-observed", gin.H{"user_id": "author"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if !resp.Flagged {
		t.Fatal("expected the tightened limit to flag the author")
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
