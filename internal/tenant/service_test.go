package tenant

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/farm-management/internal"
	tenantModel "github.com/frahmantamala/farm-management/internal/core/datamodel/tenant"
	"github.com/frahmantamala/farm-management/internal/core/events"
	"github.com/frahmantamala/farm-management/internal/crypto"
)

func TestTenant(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Tenant Module Suite")
}

type fakeCatalog struct {
	tenants     map[uuid.UUID]*tenantModel.Tenant
	configs     map[uuid.UUID]*tenantModel.DatabaseConfig
	deactivated []uuid.UUID
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tenants: make(map[uuid.UUID]*tenantModel.Tenant),
		configs: make(map[uuid.UUID]*tenantModel.DatabaseConfig),
	}
}

func (c *fakeCatalog) Create(t *tenantModel.Tenant) error {
	c.tenants[t.ID] = t
	if t.DatabaseConfig != nil {
		c.configs[t.ID] = t.DatabaseConfig
	}
	return nil
}

func (c *fakeCatalog) GetByID(id uuid.UUID) (*tenantModel.Tenant, error) {
	return c.tenants[id], nil
}

func (c *fakeCatalog) GetBySubdomain(subdomain string) (*tenantModel.Tenant, error) {
	for _, t := range c.tenants {
		if t.Subdomain == subdomain {
			return t, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) GetAll() ([]*tenantModel.Tenant, error) {
	out := make([]*tenantModel.Tenant, 0, len(c.tenants))
	for _, t := range c.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (c *fakeCatalog) Deactivate(id uuid.UUID) error {
	if t, ok := c.tenants[id]; ok {
		t.IsActive = false
	}
	c.deactivated = append(c.deactivated, id)
	return nil
}

func (c *fakeCatalog) GetDatabaseConfig(tenantID uuid.UUID) (*tenantModel.DatabaseConfig, error) {
	return c.configs[tenantID], nil
}

func (c *fakeCatalog) SaveDatabaseConfig(cfg *tenantModel.DatabaseConfig) error {
	c.configs[cfg.TenantID] = cfg
	return nil
}

var _ = ginkgo.Describe("Tenant Service", func() {
	var (
		catalog *fakeCatalog
		cipher  *crypto.CredentialCipher
		bus     *events.EventBus
		svc     *Service
		ctx     context.Context

		published []events.Event
		logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
	)

	validCreate := func() CreateTenantDTO {
		return CreateTenantDTO{
			CompanyName: "Green Valley Farms",
			Email:       "owner@greenvalley.test",
			Subdomain:   "greenvalley",
			Database: DatabaseConfigDTO{
				DatabaseName: "farm_greenvalley",
				Host:         "db.internal",
				Port:         5432,
				Username:     "greenvalley",
				Password:     "s3cret-db-pass",
			},
		}
	}

	record := func(eventType string) {
		bus.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			published = append(published, e)
			return nil
		})
	}

	ginkgo.BeforeEach(func() {
		catalog = newFakeCatalog()
		cipher = crypto.NewCredentialCipher("unit-test-encryption-secret")
		bus = events.NewEventBus(logger)
		published = nil
		ctx = context.Background()
		svc = NewService(catalog, cipher, bus, logger)
	})

	ginkgo.Describe("CreateTenant", func() {
		ginkgo.It("stores the tenant with an encrypted database password", func() {
			t, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(t.IsActive).To(gomega.BeTrue())

			stored := catalog.configs[t.ID]
			gomega.Expect(stored).NotTo(gomega.BeNil())
			gomega.Expect(stored.Password).NotTo(gomega.Equal("s3cret-db-pass"))

			plain, err := cipher.Decrypt(stored.Password)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(plain).To(gomega.Equal("s3cret-db-pass"))
		})

		ginkgo.It("links the database config to the generated tenant id", func() {
			t, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(t.DatabaseConfig.TenantID).To(gomega.Equal(t.ID))
		})

		ginkgo.It("rejects a duplicate subdomain", func() {
			_, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTenantAlreadyExists))
		})

		ginkgo.It("rejects incomplete payloads", func() {
			dto := validCreate()
			dto.Database.Password = ""
			_, err := svc.CreateTenant(ctx, dto)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(catalog.tenants).To(gomega.BeEmpty())
		})

		ginkgo.It("fails when the encryption secret is unset", func() {
			svc = NewService(catalog, crypto.NewCredentialCipher(""), bus, logger)
			_, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).To(gomega.MatchError(internal.ErrEncryptionSecretUnset))
			gomega.Expect(catalog.tenants).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("GetTenantBySubdomain", func() {
		ginkgo.It("finds a tenant by its subdomain", func() {
			created, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			t, err := svc.GetTenantBySubdomain("greenvalley")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(t.ID).To(gomega.Equal(created.ID))
		})

		ginkgo.It("returns not found for an unknown subdomain", func() {
			_, err := svc.GetTenantBySubdomain("nowhere")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTenantNotFound))
		})
	})

	ginkgo.Describe("DeactivateTenant", func() {
		ginkgo.It("tombstones the tenant and notifies subscribers before returning", func() {
			t, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			record(events.TenantDeactivatedEvent)

			gomega.Expect(svc.DeactivateTenant(ctx, t.ID)).To(gomega.Succeed())
			gomega.Expect(catalog.deactivated).To(gomega.ConsistOf(t.ID))

			gomega.Expect(published).To(gomega.HaveLen(1))
			id, ok := events.TenantID(published[0])
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(id).To(gomega.Equal(t.ID.String()))
		})

		ginkgo.It("returns not found for an unknown tenant", func() {
			err := svc.DeactivateTenant(ctx, uuid.New())
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTenantNotFound))
		})
	})

	ginkgo.Describe("ReconfigureDatabase", func() {
		var tenantID uuid.UUID

		rotate := func() ReconfigureDatabaseDTO {
			return ReconfigureDatabaseDTO{
				Host:     "db-replica.internal",
				Port:     5433,
				Username: "greenvalley_v2",
				Password: "rotated-db-pass",
			}
		}

		ginkgo.BeforeEach(func() {
			t, err := svc.CreateTenant(ctx, validCreate())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			tenantID = t.ID
		})

		ginkgo.It("re-encrypts the rotated password and saves the new config", func() {
			gomega.Expect(svc.ReconfigureDatabase(ctx, tenantID, rotate())).To(gomega.Succeed())

			cfg := catalog.configs[tenantID]
			gomega.Expect(cfg.Host).To(gomega.Equal("db-replica.internal"))
			gomega.Expect(cfg.Port).To(gomega.Equal(5433))
			gomega.Expect(cfg.Username).To(gomega.Equal("greenvalley_v2"))
			gomega.Expect(cfg.Password).NotTo(gomega.Equal("rotated-db-pass"))

			plain, err := cipher.Decrypt(cfg.Password)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(plain).To(gomega.Equal("rotated-db-pass"))
		})

		ginkgo.It("notifies rotation subscribers before returning", func() {
			record(events.TenantCredentialsRotatedEvent)

			gomega.Expect(svc.ReconfigureDatabase(ctx, tenantID, rotate())).To(gomega.Succeed())

			gomega.Expect(published).To(gomega.HaveLen(1))
			id, ok := events.TenantID(published[0])
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(id).To(gomega.Equal(tenantID.String()))
		})

		ginkgo.It("returns not found for an unknown tenant", func() {
			err := svc.ReconfigureDatabase(ctx, uuid.New(), rotate())
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTenantNotFound))
		})

		ginkgo.It("rejects an invalid port", func() {
			dto := rotate()
			dto.Port = 0
			err := svc.ReconfigureDatabase(ctx, tenantID, dto)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
