package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/tupyy/hcam-agent/api/v1"
	"github.com/tupyy/hcam-agent/internal/handlers"
	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/internal/services"
	"github.com/tupyy/hcam-agent/internal/session"
	"github.com/tupyy/hcam-agent/internal/simulator"
	"github.com/tupyy/hcam-agent/internal/store"
	"github.com/tupyy/hcam-agent/internal/store/migrations"
	"github.com/tupyy/hcam-agent/pkg/camapi"
	"github.com/tupyy/hcam-agent/pkg/scheduler"
)

type staticWatcher struct {
	last *models.CameraStatus
}

func (w *staticWatcher) Last() *models.CameraStatus {
	return w.last
}

var _ = Describe("Agent API", func() {
	var (
		router  *gin.Engine
		sched   *scheduler.Scheduler
		db      *sql.DB
		st      *store.Store
		device  *simulator.Device
		camera  *httptest.Server
		watcher *staticWatcher
	)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, "/api/v1"+path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder, v any) {
		Expect(json.Unmarshal(w.Body.Bytes(), v)).To(Succeed())
	}

	BeforeEach(func() {
		ctx := context.Background()
		sched = scheduler.NewScheduler(1)

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		clock := simulator.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		device = simulator.NewDevice(clock, simulator.DefaultOptions())
		camera = httptest.NewServer(device.Handler())
		api := camapi.NewAPI(camapi.NewClient(camera.URL, 5*time.Second))

		captureSrv := services.NewCaptureService(sched, api, st.Profiles(),
			services.WithMonitorOptions(session.WithSleep(clock.Sleep)),
			services.WithOrchestratorOptions(session.WithOrchestratorSleep(clock.Sleep)),
		)
		watcher = &staticWatcher{}

		router = gin.New()
		v1.RegisterHandlers(router.Group("/api/v1"), handlers.New(api, watcher, st.Profiles(), captureSrv))
	})

	AfterEach(func() {
		sched.Close()
		camera.Close()
		_ = db.Close()
	})

	Describe("camera", func() {
		It("should return the live status", func() {
			w := do(http.MethodGet, "/camera/status", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp v1.CameraStatus
			decode(w, &resp)
			Expect(resp.State).To(Equal("Calibrating"))
			Expect(resp.StateCode).To(Equal(2))
			Expect(resp.Flags).To(Equal([]string{"SD card installed"}))
			Expect(resp.Text).To(HavePrefix("State: Calibrating;"))
		})

		It("should configure and return the allowed settings", func() {
			w := do(http.MethodPost, "/camera/configure", map[string]any{"requested_frame_rate": 240})
			Expect(w.Code).To(Equal(http.StatusOK))

			var allowed map[string]any
			decode(w, &allowed)
			Expect(allowed).To(HaveKeyWithValue("frame_rate", BeNumerically("==", 240)))

			w = do(http.MethodGet, "/camera/settings", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var current map[string]any
			decode(w, &current)
			Expect(current).To(HaveKeyWithValue("frame_rate", BeNumerically("==", 240)))
		})

		It("should return 404 before the watcher observed the camera", func() {
			w := do(http.MethodGet, "/camera/watch", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return the watched status", func() {
			active := 2
			watcher.last = &models.CameraStatus{
				Status:     &camapi.CamStatus{State: camapi.StateRunning, ActiveBuffer: &active},
				Text:       "State: Running",
				ObservedAt: time.Now(),
			}

			w := do(http.MethodGet, "/camera/watch", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp v1.CameraStatus
			decode(w, &resp)
			Expect(resp.State).To(Equal("Running"))
			Expect(resp.ActiveBuffer).To(HaveValue(Equal(2)))
			Expect(resp.Flags).To(BeEmpty())
			Expect(resp.ObservedAt).NotTo(BeNil())
		})
	})

	Describe("profiles", func() {
		It("should create, read, list and delete a profile", func() {
			w := do(http.MethodPut, "/profiles/bench", map[string]any{
				"settings": map[string]any{"requested_duration": 4},
			})
			Expect(w.Code).To(Equal(http.StatusOK))

			var created v1.Profile
			decode(w, &created)
			Expect(created.Name).To(Equal("bench"))
			Expect(created.Settings).To(HaveKeyWithValue("requested_duration", BeNumerically("==", 4)))

			w = do(http.MethodGet, "/profiles/bench", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			w = do(http.MethodGet, "/profiles", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			var list v1.ProfileList
			decode(w, &list)
			Expect(list.Profiles).To(HaveLen(1))

			w = do(http.MethodDelete, "/profiles/bench", nil)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = do(http.MethodGet, "/profiles/bench", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should reject a profile without settings", func() {
			w := do(http.MethodPut, "/profiles/bench", map[string]any{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 404 when deleting an unknown profile", func() {
			w := do(http.MethodDelete, "/profiles/missing", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("sessions", func() {
		It("should return 404 without a session", func() {
			Expect(do(http.MethodGet, "/sessions/current", nil).Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodDelete, "/sessions/current", nil).Code).To(Equal(http.StatusNotFound))
		})

		It("should run a multishot session", func() {
			w := do(http.MethodPost, "/sessions", map[string]any{
				"mode":          "multishot",
				"settings":      map[string]any{"requested_multishot_count": 2},
				"discard_after": 1,
			})
			Expect(w.Code).To(Equal(http.StatusAccepted))

			var started v1.Session
			decode(w, &started)
			Expect(started.ID).NotTo(BeEmpty())
			Expect(started.Mode).To(Equal(v1.SessionModeMultishot))

			Eventually(func() string {
				var s v1.Session
				decode(do(http.MethodGet, "/sessions/current", nil), &s)
				return s.State
			}).Should(Equal("completed"))

			var done v1.Session
			decode(do(http.MethodGet, "/sessions/current", nil), &done)
			Expect(done.ID).To(Equal(started.ID))
			Expect(done.Result).NotTo(BeNil())
			Expect(done.Result.Outcome).To(Equal("discarded"))
			Expect(done.Result.Saved).To(Equal(1))
		})

		It("should reject an unknown mode", func() {
			w := do(http.MethodPost, "/sessions", map[string]any{"mode": "burst"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 404 for an unknown profile", func() {
			w := do(http.MethodPost, "/sessions", map[string]any{"profile": "missing"})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
