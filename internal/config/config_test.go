package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ecordell/optgen/helpers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/hcam-agent/internal/config"
)

var _ = Describe("Configuration", func() {
	It("should start from the defaults", func() {
		cfg := config.NewConfigurationWithOptionsAndDefaults()

		Expect(cfg.Server.HTTPPort).To(Equal(8080))
		Expect(cfg.Server.ServerMode).To(Equal("dev"))
		Expect(cfg.Agent.NumWorkers).To(Equal(2))
		Expect(cfg.Camera.PollInterval).To(Equal(time.Second))
		Expect(cfg.Camera.CalibrationPolls).To(Equal(4))
		Expect(cfg.Camera.SaveTimeout).To(Equal(30 * time.Second))
		Expect(cfg.Camera.DiscardTimeout).To(Equal(5 * time.Second))
		Expect(cfg.LogFormat).To(Equal("console"))
	})

	It("should apply options over the defaults", func() {
		cfg := config.NewConfigurationWithOptionsAndDefaults(
			config.WithLogLevel("debug"),
			config.WithCamera(*config.NewCameraWithOptionsAndDefaults(config.WithAddress("10.0.0.2"))),
		)

		Expect(cfg.LogLevel).To(Equal("debug"))
		Expect(cfg.Camera.Address).To(Equal("10.0.0.2"))
		Expect(cfg.Camera.SaveTimeout).To(Equal(30 * time.Second))
	})

	It("should expose a flat debug map", func() {
		cfg := config.NewConfigurationWithOptionsAndDefaults()
		Expect(helpers.Flatten(cfg.Camera.DebugMap())).To(HaveKey("Address"))
	})

	Describe("environment", func() {
		AfterEach(func() {
			for _, name := range []string{"HCAM_CAMERA_ADDRESS", "HCAM_HTTP_PORT", "HCAM_CAMERA_POLL_INTERVAL", "HCAM_NUM_WORKERS"} {
				_ = os.Unsetenv(name)
			}
		})

		It("should override the defaults", func() {
			GinkgoT().Setenv("HCAM_CAMERA_ADDRESS", "cam.local")
			GinkgoT().Setenv("HCAM_HTTP_PORT", "9090")
			GinkgoT().Setenv("HCAM_CAMERA_POLL_INTERVAL", "250ms")

			cfg := config.NewConfigurationWithOptionsAndDefaults()
			Expect(config.ApplyEnv(cfg)).To(Succeed())
			Expect(cfg.Camera.Address).To(Equal("cam.local"))
			Expect(cfg.Server.HTTPPort).To(Equal(9090))
			Expect(cfg.Camera.PollInterval).To(Equal(250 * time.Millisecond))
		})

		It("should report malformed values", func() {
			GinkgoT().Setenv("HCAM_NUM_WORKERS", "many")

			cfg := config.NewConfigurationWithOptionsAndDefaults()
			Expect(config.ApplyEnv(cfg)).To(MatchError(ContainSubstring("HCAM_NUM_WORKERS")))
			Expect(cfg.Agent.NumWorkers).To(Equal(2))
		})

		It("should load an env file without overriding the environment", func() {
			path := filepath.Join(GinkgoT().TempDir(), ".env")
			Expect(os.WriteFile(path, []byte("HCAM_CAMERA_ADDRESS=from-file\nHCAM_HTTP_PORT=7000\n"), 0o600)).To(Succeed())
			GinkgoT().Setenv("HCAM_HTTP_PORT", "9090")

			Expect(config.LoadEnvFile(path)).To(Succeed())
			Expect(os.Getenv("HCAM_CAMERA_ADDRESS")).To(Equal("from-file"))
			Expect(os.Getenv("HCAM_HTTP_PORT")).To(Equal("9090"))
		})

		It("should ignore a missing env file", func() {
			Expect(config.LoadEnvFile(filepath.Join(GinkgoT().TempDir(), "missing.env"))).To(Succeed())
		})
	})

	Describe("settings files", func() {
		It("should prefix keys and keep nulls", func() {
			settings, err := config.ParseSettings([]byte("frame_rate: 1000\nrequested_duration: 5\nmultishot_count: null\nexposure: 0.002\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(settings).To(HaveLen(4))
			Expect(settings).To(HaveKeyWithValue("requested_frame_rate", 1000))
			Expect(settings).To(HaveKeyWithValue("requested_duration", 5))
			Expect(settings).To(HaveKeyWithValue("requested_multishot_count", BeNil()))
			Expect(settings).To(HaveKeyWithValue("requested_exposure", 0.002))
		})

		It("should refuse nested values", func() {
			_, err := config.ParseSettings([]byte("frame_rate:\n  min: 10\n"))
			Expect(err).To(HaveOccurred())
		})

		It("should read a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "profile.yaml")
			Expect(os.WriteFile(path, []byte("duration: 3\n"), 0o600)).To(Succeed())

			settings, err := config.LoadSettingsFile(path)
			Expect(err).NotTo(HaveOccurred())
			n, ok := settings.Int("requested_duration")
			Expect(ok).To(BeTrue())
			Expect(n).To(Equal(3))
		})
	})
})
