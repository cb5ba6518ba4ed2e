package store_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/hcam-agent/internal/models"
	"github.com/tupyy/hcam-agent/internal/store"
	"github.com/tupyy/hcam-agent/internal/store/migrations"
	"github.com/tupyy/hcam-agent/pkg/camapi"
)

var _ = Describe("ProfileStore", func() {
	var (
		ctx     context.Context
		s       *store.Store
		db      *sql.DB
		profile *models.Profile
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)

		profile = &models.Profile{
			Name: "slow-motion",
			Settings: camapi.Settings{
				"requested_frame_rate":      1000,
				"requested_duration":        5,
				"requested_multishot_count": nil,
			},
		}
	})

	AfterEach(func() {
		if db != nil {
			_ = db.Close()
		}
	})

	Describe("migrations", func() {
		It("should record the applied versions once", func() {
			Expect(migrations.Run(ctx, db)).To(Succeed())

			versions, err := migrations.Applied(ctx, db)
			Expect(err).NotTo(HaveOccurred())
			Expect(versions).To(Equal([]int{1}))
		})
	})

	Describe("Save", func() {
		It("should save a profile", func() {
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())
		})

		It("should refuse a profile without a name", func() {
			Expect(s.Profiles().Save(ctx, &models.Profile{})).NotTo(Succeed())
		})

		It("should replace the settings on a second save", func() {
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())

			profile.Settings = camapi.Settings{"requested_frame_rate": 500}
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())

			retrieved, err := s.Profiles().Get(ctx, "slow-motion")
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Settings).To(HaveLen(1))
			n, ok := retrieved.Settings.Int("requested_frame_rate")
			Expect(ok).To(BeTrue())
			Expect(n).To(Equal(500))
		})
	})

	Describe("Get", func() {
		It("should return ErrNotFound for an unknown profile", func() {
			_, err := s.Profiles().Get(ctx, "missing")
			Expect(err).To(Equal(store.ErrNotFound))
		})

		It("should keep numbers and nulls", func() {
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())

			retrieved, err := s.Profiles().Get(ctx, "slow-motion")
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Name).To(Equal("slow-motion"))

			n, ok := retrieved.Settings.Int("requested_frame_rate")
			Expect(ok).To(BeTrue())
			Expect(n).To(Equal(1000))
			Expect(retrieved.Settings).To(HaveKeyWithValue("requested_multishot_count", BeNil()))
		})

		It("should have timestamps set by the database", func() {
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())

			retrieved, err := s.Profiles().Get(ctx, "slow-motion")
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.CreatedAt).NotTo(BeZero())
			Expect(retrieved.UpdatedAt).NotTo(BeZero())
		})
	})

	Describe("List", func() {
		It("should return an empty list without profiles", func() {
			profiles, err := s.Profiles().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles).To(BeEmpty())
		})

		It("should list profiles by name", func() {
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())
			Expect(s.Profiles().Save(ctx, &models.Profile{Name: "bench"})).To(Succeed())

			profiles, err := s.Profiles().List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(profiles).To(HaveLen(2))
			Expect(profiles[0].Name).To(Equal("bench"))
			Expect(profiles[0].Settings).To(BeEmpty())
			Expect(profiles[1].Name).To(Equal("slow-motion"))
		})
	})

	Describe("Delete", func() {
		It("should delete an existing profile", func() {
			Expect(s.Profiles().Save(ctx, profile)).To(Succeed())
			Expect(s.Profiles().Delete(ctx, "slow-motion")).To(Succeed())

			_, err := s.Profiles().Get(ctx, "slow-motion")
			Expect(err).To(Equal(store.ErrNotFound))
		})

		It("should return ErrNotFound for an unknown profile", func() {
			Expect(s.Profiles().Delete(ctx, "missing")).To(Equal(store.ErrNotFound))
		})
	})
})
