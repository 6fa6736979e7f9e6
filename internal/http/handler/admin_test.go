package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/http/handler"
)

var _ = Describe("AdminHandler", func() {
	var (
		router   *gin.Engine
		nuggets  *fakeNuggets
		embedder *fakeEmbedder
		vectors  *fakeVectorStore
		feedback *fakeFeedback
		analyses *fakeAnalyses
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		nuggets = &fakeNuggets{
			upsertFn: func(_ context.Context, n domain.KnowledgeNugget) (*domain.KnowledgeNugget, error) {
				return &n, nil
			},
			listAll: []domain.KnowledgeNugget{
				{ID: "nugget-1", Title: "Financing basics", Language: domain.Language("en")},
				{ID: "nugget-2", Title: "Podstawy finansowania", Language: domain.Language("pl")},
			},
		}
		embedder = &fakeEmbedder{}
		vectors = &fakeVectorStore{}
		feedback = &fakeFeedback{}
		analyses = &fakeAnalyses{}

		h := handler.NewAdminHandler(nuggets, embedder, vectors, feedback, analyses)
		router = gin.New()
		router.GET("/admin/nuggets", h.ListNuggets)
		router.POST("/admin/nuggets", h.UpsertNugget)
		router.GET("/admin/sessions/:session_id/feedback", h.FeedbackForSession)
		router.GET("/admin/sessions/:session_id/analytics", h.AnalyticsForSession)
	})

	Describe("ListNuggets", func() {
		It("returns every nugget with no filter", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin/nuggets", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Data []map[string]any `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data).To(HaveLen(2))
		})

		It("filters by language", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin/nuggets?language=pl", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Data []map[string]any `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data).To(HaveLen(1))
			Expect(resp.Data[0]["id"]).To(Equal("nugget-2"))
		})
	})

	Describe("UpsertNugget", func() {
		It("mints a slug-based id for a new nugget", func() {
			var captured domain.KnowledgeNugget
			nuggets.upsertFn = func(_ context.Context, n domain.KnowledgeNugget) (*domain.KnowledgeNugget, error) {
				captured = n
				return &n, nil
			}

			body, _ := json.Marshal(map[string]any{
				"title":    "Tax Credits Overview",
				"body":     "Explains available credits.",
				"language": "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/admin/nuggets", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(captured.ID).To(HavePrefix("tax-credits-overview-"))
		})

		It("keeps the given id when replacing an existing nugget", func() {
			var captured domain.KnowledgeNugget
			nuggets.upsertFn = func(_ context.Context, n domain.KnowledgeNugget) (*domain.KnowledgeNugget, error) {
				captured = n
				return &n, nil
			}

			body, _ := json.Marshal(map[string]any{
				"id":       "nugget-1",
				"title":    "Financing basics, revised",
				"body":     "Updated body.",
				"language": "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/admin/nuggets", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(captured.ID).To(Equal("nugget-1"))
		})

		It("rejects a request missing required fields", func() {
			body, _ := json.Marshal(map[string]any{"title": "Missing body and language"})
			req := httptest.NewRequest(http.MethodPost, "/admin/nuggets", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps an embedding failure to a bad gateway", func() {
			embedder.embedFn = func(_ context.Context, _ string) ([]float32, error) {
				return nil, errors.New("embedding service down")
			}
			body, _ := json.Marshal(map[string]any{
				"title":    "Title",
				"body":     "Body",
				"language": "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/admin/nuggets", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})

		It("maps an indexing failure to a bad gateway", func() {
			vectors.upsertFn = func(_ context.Context, _ domain.KnowledgeNugget) error {
				return errors.New("typesense down")
			}
			body, _ := json.Marshal(map[string]any{
				"title":    "Title",
				"body":     "Body",
				"language": "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/admin/nuggets", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("FeedbackForSession", func() {
		It("groups a session's feedback entries", func() {
			feedback.listBySession = []domain.FeedbackEntry{
				{ID: 1, CritiquedEntryID: 7, Polarity: domain.FeedbackDown, SellerComment: "too salesy"},
			}
			req := httptest.NewRequest(http.MethodGet, "/admin/sessions/S-ABC-001/feedback", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Data struct {
					SessionID string `json:"session_id"`
					Entries   []struct {
						ID int64 `json:"id"`
					} `json:"entries"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data.SessionID).To(Equal("S-ABC-001"))
			Expect(resp.Data.Entries).To(HaveLen(1))
		})
	})

	Describe("AnalyticsForSession", func() {
		It("rolls up thumbs counts and the latest analysis status", func() {
			feedback.listBySession = []domain.FeedbackEntry{
				{Polarity: domain.FeedbackUp},
				{Polarity: domain.FeedbackUp},
				{Polarity: domain.FeedbackDown},
			}
			analyses.listBySession = []domain.DeepAnalysisEntry{
				{ID: 1, SessionID: "S-ABC-001", Status: domain.AnalysisFailed},
				{ID: 2, SessionID: "S-ABC-001", Status: domain.AnalysisSuccess},
			}

			req := httptest.NewRequest(http.MethodGet, "/admin/sessions/S-ABC-001/analytics", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Data struct {
					ThumbsUp     int    `json:"thumbs_up"`
					ThumbsDown   int    `json:"thumbs_down"`
					AnalysisRuns int    `json:"analysis_runs"`
					LatestStatus string `json:"latest_status"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data.ThumbsUp).To(Equal(2))
			Expect(resp.Data.ThumbsDown).To(Equal(1))
			Expect(resp.Data.AnalysisRuns).To(Equal(2))
			Expect(resp.Data.LatestStatus).To(Equal(string(domain.AnalysisSuccess)))
		})
	})
})
