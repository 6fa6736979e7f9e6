package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/channel"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/http/handler"
	"github.com/basegraph/salesassist/internal/llmgw"
	"github.com/basegraph/salesassist/internal/orchestrator"
	"github.com/basegraph/salesassist/internal/queue"
)

var _ = Describe("SessionHandler", func() {
	var (
		router   *gin.Engine
		sessions *fakeSessions
		analyses *fakeAnalyses
		feedback *fakeFeedback
		gateway  *fakeGateway
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		sessions = &fakeSessions{
			createFn: func(_ context.Context, lang domain.Language) (*domain.Session, error) {
				return &domain.Session{ID: "S-NEW-001", JourneyStage: domain.StageDiscovery, PreferredLanguage: lang}, nil
			},
			getFn: func(_ context.Context, sessionID string) (*domain.Session, error) {
				return &domain.Session{ID: sessionID, JourneyStage: domain.StageDiscovery}, nil
			},
			endFn: func(_ context.Context, _ string, _ domain.TerminalOutcome) error { return nil },
		}
		analyses = &fakeAnalyses{}
		feedback = &fakeFeedback{
			createFn: func(_ context.Context, e domain.FeedbackEntry) (*domain.FeedbackEntry, error) {
				e.ID = 42
				return &e, nil
			},
		}
		gateway = &fakeGateway{
			fastFn: func(_ context.Context, _ llmgw.CompletionRequest) (json.RawMessage, error) {
				return json.RawMessage(`{"suggested_response":"Ask about budget.","seller_questions":["What's your timeline?"],"client_style":"Analytical","confidence_score":0.9,"confidence_reason":"clear signal"}`), nil
			},
		}

		orch, err := orchestrator.New(
			sessions,
			&fakeRetriever{context: ""},
			gateway,
			fakeComposer{},
			analyses,
			feedback,
			channel.NewRegistry(),
			&fakeProducer{},
			orchestrator.DefaultConfig(),
		)
		Expect(err).NotTo(HaveOccurred())

		h := handler.NewSessionHandler(orch, sessions, analyses, feedback)
		router = gin.New()
		router.POST("/sessions/new", h.New)
		router.GET("/sessions/:id", h.Get)
		router.POST("/sessions/send", h.Send)
		router.POST("/sessions/refine", h.Refine)
		router.POST("/sessions/retry_slowpath", h.RetrySlowPath)
		router.POST("/sessions/end", h.End)
		router.POST("/sessions/feedback", h.Feedback)
	})

	Describe("New", func() {
		It("mints a session with an empty body", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions/new", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var body map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body["status"]).To(Equal("success"))
		})

		It("rejects malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions/new", bytes.NewBufferString(`{`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Get", func() {
		It("rejects a provisional session id", func() {
			req := httptest.NewRequest(http.MethodGet, "/sessions/TEMP-abc123", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns the session detail on a committed id", func() {
			req := httptest.NewRequest(http.MethodGet, "/sessions/S-ABC-001", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("maps a missing session to 404", func() {
			sessions.getFn = func(_ context.Context, _ string) (*domain.Session, error) {
				return nil, apperr.New(apperr.KindSessionNotFound, "not found")
			}
			req := httptest.NewRequest(http.MethodGet, "/sessions/S-GONE-001", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Send", func() {
		It("returns a coached reply under both question keys", func() {
			body, _ := json.Marshal(map[string]any{
				"session_id":    "S-ABC-001",
				"user_input":    "Client is worried about the price.",
				"journey_stage": "Discovery",
				"language":      "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/sessions/send", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Data struct {
					SuggestedQuestions []string `json:"suggested_questions"`
					SellerQuestions    []string `json:"seller_questions"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data.SuggestedQuestions).To(Equal(resp.Data.SellerQuestions))
		})

		It("rejects an unrecognized journey stage", func() {
			body, _ := json.Marshal(map[string]any{
				"session_id":    "S-ABC-001",
				"user_input":    "hello",
				"journey_stage": "Nonsense",
				"language":      "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/sessions/send", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Refine", func() {
		It("returns a refined suggestion", func() {
			gateway.fastFn = func(_ context.Context, _ llmgw.CompletionRequest) (json.RawMessage, error) {
				return json.RawMessage(`{"refined_suggestion":"Lead with total cost of ownership instead."}`), nil
			}

			body, _ := json.Marshal(map[string]any{
				"session_id":         "S-ABC-001",
				"critiqued_entry_id": 7,
				"original_note":      "Client asked about financing.",
				"bad_suggestion":     "Just mention the price.",
				"criticism":          "Too blunt, doesn't address financing.",
				"language":           "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/sessions/refine", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Data struct {
					RefinedSuggestion string `json:"refined_suggestion"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data.RefinedSuggestion).To(Equal("Lead with total cost of ownership instead."))
		})

		It("rejects a request missing the criticism field", func() {
			body, _ := json.Marshal(map[string]any{
				"session_id":         "S-ABC-001",
				"critiqued_entry_id": 7,
				"original_note":      "Client asked about financing.",
				"bad_suggestion":     "Just mention the price.",
				"language":           "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/sessions/refine", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("RetrySlowPath", func() {
		It("surfaces an enqueue failure instead of swallowing it", func() {
			// orchestrator wired above uses a fakeProducer that never errors,
			// so rebuild with one that does to exercise the failure path.
			failingProducer := &fakeProducer{enqueueFn: func(_ context.Context, _ queue.SlowPathRequest) error {
				return apperr.New(apperr.KindDependencyUnavailable, "redis down")
			}}
			orch, err := orchestrator.New(sessions, &fakeRetriever{}, gateway, fakeComposer{}, analyses, feedback, channel.NewRegistry(), failingProducer, orchestrator.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			h := handler.NewSessionHandler(orch, sessions, analyses, feedback)
			r := gin.New()
			r.POST("/sessions/retry_slowpath", h.RetrySlowPath)

			body, _ := json.Marshal(map[string]string{"session_id": "S-ABC-001"})
			req := httptest.NewRequest(http.MethodPost, "/sessions/retry_slowpath", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("End", func() {
		It("is idempotent on an already-ended session", func() {
			body, _ := json.Marshal(map[string]string{"session_id": "S-ABC-001", "outcome": "Won"})
			for i := 0; i < 2; i++ {
				req := httptest.NewRequest(http.MethodPost, "/sessions/end", bytes.NewBuffer(body))
				req.Header.Set("Content-Type", "application/json")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusOK))
			}
		})
	})

	Describe("Feedback", func() {
		It("persists a standalone reaction", func() {
			body, _ := json.Marshal(map[string]any{
				"session_id":         "S-ABC-001",
				"critiqued_entry_id": 7,
				"polarity":           "down",
				"language":           "en",
			})
			req := httptest.NewRequest(http.MethodPost, "/sessions/feedback", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
		})
	})
})
