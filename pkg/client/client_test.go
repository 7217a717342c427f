package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studyhallco/studyhall/pkg/analytics"
	"github.com/studyhallco/studyhall/pkg/client"
	"github.com/studyhallco/studyhall/pkg/credentials"
	"github.com/studyhallco/studyhall/pkg/learn"
)

// newTestClient builds a client against a test server, optionally seeded
// with a session token.
func newTestClient(serverURL, token string) *client.Client {
	c, err := client.New(client.Config{ServerURL: serverURL, Token: token}, nil)
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("New", func() {
		It("requires a server URL", func() {
			_, err := client.New(client.Config{}, nil)
			Expect(err).To(MatchError(ContainSubstring("server URL is required")))
		})

		It("rejects a relative server URL", func() {
			_, err := client.New(client.Config{ServerURL: "localhost:8080"}, nil)
			Expect(err).To(MatchError(ContainSubstring("must be absolute")))
		})

		It("strips a trailing slash from the server URL", func() {
			c := newTestClient("http://localhost:8080/", "")
			Expect(c.ServerURL()).To(Equal("http://localhost:8080"))
		})
	})

	Describe("SessionToken", func() {
		It("is empty when no token is held", func() {
			Expect(newTestClient("http://localhost:8080", "").SessionToken()).To(BeEmpty())
		})

		It("returns a pre-seeded token", func() {
			Expect(newTestClient("http://localhost:8080", "tok-123").SessionToken()).To(Equal("tok-123"))
		})
	})

	Describe("Ping", func() {
		It("succeeds against a healthy server", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.URL.Path).To(Equal("/ping"))
				json.NewEncoder(w).Encode("pong")
			}))
			defer ts.Close()

			Expect(newTestClient(ts.URL, "").Ping(ctx)).To(Succeed())
		})

		It("fails when the server is unreachable", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			ts.Close()

			err := newTestClient(ts.URL, "").Ping(ctx)
			Expect(err).To(MatchError(ContainSubstring("reaching server")))
		})
	})

	Describe("Login", func() {
		It("posts the credentials and captures the session cookie", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/v1/auth/login"))

				var body struct {
					Email    string `json:"email"`
					Password string `json:"password"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Email).To(Equal("ada@example.com"))
				Expect(body.Password).To(Equal("lovelace"))

				http.SetCookie(w, &http.Cookie{Name: "studyhall_session", Value: "minted-token", Path: "/"})
				json.NewEncoder(w).Encode(learn.Profile{Email: "ada@example.com", Name: "Ada"})
			}))
			defer ts.Close()

			c := newTestClient(ts.URL, "")
			profile, err := c.Login(ctx, "ada@example.com", "lovelace")
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Name).To(Equal("Ada"))
			Expect(c.SessionToken()).To(Equal("minted-token"))
		})

		It("surfaces rejected credentials as an unauthorized error", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid email or password"})
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL, "").Login(ctx, "ada@example.com", "wrong")
			Expect(err).To(MatchError(ContainSubstring("invalid email or password")))
			Expect(client.IsUnauthorized(err)).To(BeTrue())
		})

		It("requires an email and a password", func() {
			c := newTestClient("http://127.0.0.1:1", "")

			_, err := c.Login(ctx, "", "secret")
			Expect(err).To(MatchError(ContainSubstring("email is required")))

			_, err = c.Login(ctx, "ada@example.com", "")
			Expect(err).To(MatchError(ContainSubstring("password is required")))
		})
	})

	Describe("session cookie handling", func() {
		It("sends a pre-seeded token on every request", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				cookie, err := r.Cookie("studyhall_session")
				Expect(err).NotTo(HaveOccurred())
				Expect(cookie.Value).To(Equal("stored-token"))
				json.NewEncoder(w).Encode(learn.Profile{Email: "ada@example.com", Name: "Ada"})
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL, "stored-token").Me(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("maps a missing session to an unauthorized error", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "not signed in"})
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL, "").Me(ctx)
			Expect(client.IsUnauthorized(err)).To(BeTrue())
		})
	})

	Describe("Logout", func() {
		It("posts to the logout endpoint", func() {
			var called bool
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/v1/auth/logout"))
				called = true
				w.WriteHeader(http.StatusNoContent)
			}))
			defer ts.Close()

			Expect(newTestClient(ts.URL, "stored-token").Logout(ctx)).To(Succeed())
			Expect(called).To(BeTrue())
		})
	})

	Describe("Quizzes", func() {
		It("lists quiz summaries", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/quizzes"))
				json.NewEncoder(w).Encode(map[string]any{
					"quizzes": []learn.QuizSummary{
						{Slug: "fractions-basics", Title: "Fractions Basics", QuestionCount: 3, MaxScore: 4},
					},
					"count": 1,
				})
			}))
			defer ts.Close()

			quizzes, err := newTestClient(ts.URL, "tok").Quizzes(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(quizzes).To(HaveLen(1))
			Expect(quizzes[0].Slug).To(Equal("fractions-basics"))
			Expect(quizzes[0].MaxScore).To(Equal(4))
		})
	})

	Describe("Quiz", func() {
		It("fetches a quiz view by slug", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/quizzes/fractions-basics"))
				json.NewEncoder(w).Encode(learn.QuizView{
					Slug:  "fractions-basics",
					Title: "Fractions Basics",
					Questions: []learn.QuestionView{
						{Prompt: "1/2 + 1/4 = ?", Choices: []string{"3/4", "2/6"}, Points: 1},
					},
				})
			}))
			defer ts.Close()

			view, err := newTestClient(ts.URL, "tok").Quiz(ctx, "fractions-basics")
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Questions).To(HaveLen(1))
		})

		It("maps an unknown slug to a not-found error", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "quiz not found"})
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL, "tok").Quiz(ctx, "nope")
			Expect(client.IsNotFound(err)).To(BeTrue())
		})

		It("requires a slug", func() {
			_, err := newTestClient("http://127.0.0.1:1", "").Quiz(ctx, "")
			Expect(err).To(MatchError(ContainSubstring("slug is required")))
		})
	})

	Describe("SubmitAttempt", func() {
		It("posts the answers and returns the graded attempt", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/v1/quizzes/fractions-basics/attempts"))

				var body struct {
					Answers []int `json:"answers"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Answers).To(Equal([]int{0, 1, 0}))

				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(learn.Attempt{
					ID: "attempt-1", QuizSlug: "fractions-basics", Score: 4, MaxScore: 4,
				})
			}))
			defer ts.Close()

			attempt, err := newTestClient(ts.URL, "tok").SubmitAttempt(ctx, "fractions-basics", []int{0, 1, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(attempt.Score).To(Equal(4))
		})
	})

	Describe("Attempts", func() {
		It("lists the learner's attempts", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/attempts"))
				json.NewEncoder(w).Encode(map[string]any{
					"attempts": []*learn.Attempt{{ID: "attempt-1", QuizSlug: "fractions-basics"}},
					"count":    1,
				})
			}))
			defer ts.Close()

			attempts, err := newTestClient(ts.URL, "tok").Attempts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(HaveLen(1))
		})
	})

	Describe("CheckIn", func() {
		It("posts the scales and note", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/checkins"))

				var body struct {
					Mood   int    `json:"mood"`
					Energy int    `json:"energy"`
					Note   string `json:"note"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Mood).To(Equal(4))
				Expect(body.Energy).To(Equal(3))
				Expect(body.Note).To(Equal("ready to go"))

				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(learn.CheckIn{ID: "checkin-1", Mood: 4, Energy: 3})
			}))
			defer ts.Close()

			checkIn, err := newTestClient(ts.URL, "tok").CheckIn(ctx, 4, 3, "ready to go")
			Expect(err).NotTo(HaveOccurred())
			Expect(checkIn.ID).To(Equal("checkin-1"))
		})

		It("surfaces a validation rejection", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "mood 9 out of range 1..5"})
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL, "tok").CheckIn(ctx, 9, 3, "")
			Expect(err).To(MatchError(ContainSubstring("out of range")))
		})
	})

	Describe("RecordActivity", func() {
		It("posts the verb and object and tolerates an empty response", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/activity"))

				var body struct {
					Verb   string `json:"verb"`
					Object string `json:"object"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Verb).To(Equal(learn.VerbQuizStarted))
				Expect(body.Object).To(Equal("fractions-basics"))

				w.WriteHeader(http.StatusAccepted)
			}))
			defer ts.Close()

			err := newTestClient(ts.URL, "tok").RecordActivity(ctx, learn.VerbQuizStarted, "fractions-basics")
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires a verb", func() {
			err := newTestClient("http://127.0.0.1:1", "").RecordActivity(ctx, "", "x")
			Expect(err).To(MatchError(ContainSubstring("verb is required")))
		})
	})

	Describe("Progress", func() {
		It("decodes the analytics overview", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/progress"))
				json.NewEncoder(w).Encode(analytics.Overview{
					TotalLearners: 3,
					TotalAttempts: 12,
					Learners: []analytics.LearnerSummary{
						{Learner: "ada@example.com", Attempts: 5, AvgScore: 82.5},
					},
				})
			}))
			defer ts.Close()

			overview, err := newTestClient(ts.URL, "tok").Progress(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(overview.TotalLearners).To(Equal(3))
			Expect(overview.Learners[0].AvgScore).To(BeNumerically("~", 82.5, 0.001))
		})
	})

	Describe("LearnerProgress", func() {
		It("decodes the learner detail", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/progress/learner"))
				json.NewEncoder(w).Encode(analytics.LearnerDetail{
					Summary: analytics.LearnerSummary{Learner: "ada@example.com", StreakDays: 4},
					Quizzes: []analytics.QuizBreakdown{{QuizSlug: "fractions-basics", Mastered: true}},
				})
			}))
			defer ts.Close()

			detail, err := newTestClient(ts.URL, "tok").LearnerProgress(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Summary.StreakDays).To(Equal(4))
			Expect(detail.Quizzes[0].Mastered).To(BeTrue())
		})
	})

	Describe("Plans", func() {
		It("lists the learner's plans", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/plans"))
				json.NewEncoder(w).Encode(map[string]any{
					"plans": []*learn.Plan{{ID: "plan-1", Goal: "pass algebra"}},
					"count": 1,
				})
			}))
			defer ts.Close()

			plans, err := newTestClient(ts.URL, "tok").Plans(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(plans).To(HaveLen(1))
			Expect(plans[0].Goal).To(Equal("pass algebra"))
		})
	})

	Describe("Stats", func() {
		It("decodes the server totals", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.URL.Path).To(Equal("/api/v1/stats"))
				json.NewEncoder(w).Encode(client.Stats{Turns: 10, Roots: 2, Leaves: 3, Learners: 2, Quizzes: 4})
			}))
			defer ts.Close()

			stats, err := newTestClient(ts.URL, "tok").Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Turns).To(Equal(10))
			Expect(stats.Quizzes).To(Equal(4))
		})
	})

	Describe("error decoding", func() {
		It("falls back to the raw body when the error is not JSON", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("something broke"))
			}))
			defer ts.Close()

			err := newTestClient(ts.URL, "").Ping(ctx)
			Expect(err).To(MatchError(ContainSubstring("something broke")))
			Expect(err).To(MatchError(ContainSubstring("500")))
		})
	})
})

var _ = Describe("ResolveToken", func() {
	var (
		credsDir string
		creds    *credentials.Manager
	)

	BeforeEach(func() {
		var err error
		credsDir, err = os.MkdirTemp("", "studyhall-client-creds")
		Expect(err).NotTo(HaveOccurred())

		creds, err = credentials.NewManager(credsDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(credsDir)
	})

	It("returns the stored credential for a server", func() {
		Expect(creds.SetSession("http://localhost:8080", "stored-token", "ada@example.com")).To(Succeed())

		token, err := client.ResolveToken(creds, "http://localhost:8080")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("stored-token"))
	})

	It("prefers the environment token over the stored credential", func() {
		Expect(creds.SetSession("http://localhost:8080", "stored-token", "ada@example.com")).To(Succeed())
		Expect(os.Setenv(credentials.TokenEnvVar, "env-token")).To(Succeed())
		DeferCleanup(os.Unsetenv, credentials.TokenEnvVar)

		token, err := client.ResolveToken(creds, "http://localhost:8080")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(Equal("env-token"))
	})

	It("returns empty when no session is held", func() {
		token, err := client.ResolveToken(creds, "http://localhost:9999")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(BeEmpty())
	})

	It("tolerates a nil credentials manager", func() {
		token, err := client.ResolveToken(nil, "http://localhost:8080")
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(BeEmpty())
	})
})
