package camapi_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/hcam-agent/pkg/camapi"
)

func intPtr(i int) *int { return &i }

var _ = Describe("Formatting", func() {
	Describe("FormatFlags", func() {
		It("should join the set flags", func() {
			f := camapi.FlagStorageFull | camapi.FlagNetConfigured | camapi.FlagGenlockNoSignal
			Expect(camapi.FormatFlags(f)).To(Equal("storage full | Network storage configured | genlock signal not detected"))
		})

		It("should report no flags", func() {
			Expect(camapi.FormatFlags(0)).To(Equal("none"))
		})
	})

	Describe("FormatStatus", func() {
		It("should render a plain status", func() {
			st := &camapi.CamStatus{State: camapi.StateRunningPretriggerFull, Level: 100, AvailableSpace: 0}
			Expect(camapi.FormatStatus(st, 0)).To(Equal("State: Running pretrigger buffer full; Level: 100; Flags: none; Empty: 0 B"))
		})

		DescribeTable("multishot suffixes",
			func(state camapi.CameraState, captured *int, suffix string) {
				st := &camapi.CamStatus{State: state, ActiveBuffer: intPtr(2), CapturedBuffers: captured}
				Expect(strings.HasSuffix(camapi.FormatStatus(st, 4), suffix)).To(BeTrue())
			},
			Entry("saving", camapi.StateSaving, intPtr(3), "; Saving multishot: 2/3"),
			Entry("selective saving", camapi.StateSelectiveSaving, intPtr(3), "; Selective saving multishot: 2/3"),
			Entry("reviewing", camapi.StateReviewing, intPtr(3), "; Reviewing multishot: 2"),
			Entry("capturing", camapi.StateTriggered, nil, "; Capturing multishot: 2/4"),
			Entry("pre-filling", camapi.StateRunning, nil, "; Pre-filling multishot: 2/4"),
		)
	})

	Describe("CameraState", func() {
		It("should parse every pinned state", func() {
			for i := int64(1); i <= 12; i++ {
				s, err := camapi.ParseCameraState(i)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.String()).NotTo(HavePrefix("Unknown"))
			}
		})

		It("should reject values outside the protocol", func() {
			_, err := camapi.ParseCameraState(0)
			Expect(err).To(MatchError(camapi.ErrUnknownState))
			_, err = camapi.ParseCameraState(13)
			Expect(err).To(MatchError(camapi.ErrUnknownState))
		})

		It("should treat both running variants as running", func() {
			Expect(camapi.StateRunning.IsRunning()).To(BeTrue())
			Expect(camapi.StateRunningPretriggerFull.IsRunning()).To(BeTrue())
			Expect(camapi.StateCalibrating.IsRunning()).To(BeFalse())
		})
	})

	Describe("Settings", func() {
		It("should split requested and allowed keys", func() {
			s := camapi.Settings{"requested_iso": nil, "iso": 400, "requested_duration": 2, "duration": 2}
			Expect(s.Requested()).To(HaveLen(2))
			Expect(s.Allowed()).To(Equal(camapi.Settings{"iso": 400, "duration": 2}))
		})
	})
})

var _ = Describe("ParseMetadata", func() {
	It("should map labels onto typed values", func() {
		text := `Camera time: 2024-01-02 10:11:12
Shutter: 0.002
Frame Rate: 60
Sub-sampling: On
Overlay logo: Off
Software version: v2.5.1
Something new: 1
`
		md, err := camapi.ParseMetadata(strings.NewReader(text))
		Expect(err).NotTo(HaveOccurred())
		Expect(md).To(HaveKeyWithValue("camera_time", "2024-01-02 10:11:12"))
		Expect(md).To(HaveKeyWithValue("exposure", 0.002))
		Expect(md).To(HaveKeyWithValue("frame_rate", int64(60)))
		Expect(md).To(HaveKeyWithValue("subsample", true))
		Expect(md).To(HaveKeyWithValue("overlay_logo", false))
		Expect(md).To(HaveKeyWithValue("software_version", "v2.5.1"))
		Expect(md).To(HaveLen(6))
	})

	It("should expose the label lookup", func() {
		k, ok := camapi.MetadataKey("Multishot Buffers:")
		Expect(ok).To(BeTrue())
		Expect(k).To(Equal("multishot_count"))
	})
})
