package auth_test

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal"
	"github.com/frahmantamala/farm-management/internal/auth"
	authPostgres "github.com/frahmantamala/farm-management/internal/auth/postgres"
	userModel "github.com/frahmantamala/farm-management/internal/core/datamodel/user"

	"io"
	"log/slog"
)

// Two tenant databases deliberately share user id 1. Resolution through a
// request bound to tenant A must never see tenant B's record.
var _ = ginkgo.Describe("Tenant isolation", func() {
	var (
		dbA, dbB *gorm.DB
		service  *auth.Service
		tokenGen *auth.JWTTokenGenerator
	)

	openTenantDB := func(email, firstName string) *gorm.DB {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(db.AutoMigrate(
			&userModel.User{},
			&userModel.Module{},
			&userModel.ModuleAction{},
			&userModel.UserModule{},
		)).To(gomega.Succeed())

		gomega.Expect(db.Create(&userModel.User{
			ID:           1,
			Email:        email,
			FirstName:    firstName,
			PasswordHash: "irrelevant",
			IsActive:     true,
		}).Error).ToNot(gomega.HaveOccurred())

		return db
	}

	ginkgo.BeforeEach(func() {
		dbA = openTenantDB("alice@tenant-a.farm", "Alice")
		dbB = openTenantDB("bob@tenant-b.farm", "Bob")

		tokenGen = auth.NewJWTTokenGenerator("isolation-test-secret-0123456789abcdef", 15*time.Minute)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = auth.NewService(authPostgres.NewUserRepository(), nil, tokenGen, 4, logger)
	})

	ginkgo.It("should resolve the record of the connection's own tenant", func() {
		token, err := tokenGen.GenerateToken(1, "alice@tenant-a.farm")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		ctxA := internal.ContextWithTenantDB(context.Background(), dbA)
		user, err := service.ResolveUser(ctxA, token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(user.Email).To(gomega.Equal("alice@tenant-a.farm"))
		gomega.Expect(user.FirstName).To(gomega.Equal("Alice"))

		ctxB := internal.ContextWithTenantDB(context.Background(), dbB)
		user, err = service.ResolveUser(ctxB, token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(user.Email).To(gomega.Equal("bob@tenant-b.farm"))
		gomega.Expect(user.FirstName).To(gomega.Equal("Bob"))
	})

	ginkgo.It("should not find a principal that exists only in the other tenant", func() {
		gomega.Expect(dbA.Create(&userModel.User{
			ID:           7,
			Email:        "only-in-a@tenant-a.farm",
			FirstName:    "Seven",
			PasswordHash: "irrelevant",
			IsActive:     true,
		}).Error).ToNot(gomega.HaveOccurred())

		token, err := tokenGen.GenerateToken(7, "only-in-a@tenant-a.farm")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		ctxB := internal.ContextWithTenantDB(context.Background(), dbB)
		_, err = service.ResolveUser(ctxB, token)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrPrincipalNotFound))
	})

	ginkgo.It("should compute permissions from the connection's own grants", func() {
		seedGrant := func(db *gorm.DB, endpoint string) {
			gomega.Expect(db.Create(&userModel.Module{
				ID: 1, Name: "crops", IsActive: true,
				Actions: []userModel.ModuleAction{{ID: 1, ModuleID: 1, Name: "list", PathEndpoint: endpoint}},
			}).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(db.Create(&userModel.UserModule{ID: 1, UserID: 1, ModuleID: 1}).Error).ToNot(gomega.HaveOccurred())
		}
		seedGrant(dbA, "/crops/all")
		seedGrant(dbB, "/harvests/all")

		token, err := tokenGen.GenerateToken(1, "")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		ctxA := internal.ContextWithTenantDB(context.Background(), dbA)
		user, err := service.ResolveUser(ctxA, token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(user.Permissions).To(gomega.ConsistOf("/crops/all"))

		ctxB := internal.ContextWithTenantDB(context.Background(), dbB)
		user, err = service.ResolveUser(ctxB, token)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(user.Permissions).To(gomega.ConsistOf("/harvests/all"))
	})
})
