package cmd

import (
	"context"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal/crypto"
	"github.com/frahmantamala/farm-management/internal/registry"
	tenantPostgres "github.com/frahmantamala/farm-management/internal/tenant/postgres"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run platform db migration files, or per-tenant schema migrations with --tenants",
	}
	migrateRollback bool
	migrateTenants  bool
	migrateDir      string
	tenantDir       string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVarP(&migrateTenants, "tenants", "t", false, "to run tenant schema migrations against every active tenant database")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "platform sql migrations directory")
	migrateCmd.PersistentFlags().StringVar(&tenantDir, "tenant-dir", "db/tenant_migrations", "tenant schema sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	if migrateTenants {
		return migrateTenantDatabases(ctx, cfg.Database.Source, cfg.Security.EncryptionSecret)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}

// migrateTenantDatabases walks the tenant catalog and applies the tenant
// schema migrations to each active tenant database, decrypting stored
// credentials the same way the connection registry does.
func migrateTenantDatabases(ctx context.Context, platformSource, encryptionSecret string) error {
	platformDB, err := gorm.Open(gormPostgres.Open(platformSource), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to platform database: %v", err)
	}

	repo := tenantPostgres.NewTenantRepository(platformDB)
	cipher := crypto.NewCredentialCipher(encryptionSecret)

	tenants, err := repo.GetAll()
	if err != nil {
		log.Fatalf("failed to list tenants: %v", err)
	}

	goose.SetTableName("tenant_schema_migrations")

	for _, t := range tenants {
		if !t.IsActive {
			continue
		}

		dbCfg, err := repo.GetDatabaseConfig(t.ID)
		if err != nil {
			log.Fatalf("tenant %s: failed to load database config: %v", t.ID, err)
		}
		if dbCfg == nil {
			log.Printf("tenant %s: no database config, skipping", t.ID)
			continue
		}

		password, err := cipher.Decrypt(dbCfg.Password)
		if err != nil {
			log.Fatalf("tenant %s: failed to decrypt database credentials: %v", t.ID, err)
		}

		db, err := goose.OpenDBWithDriver("pgx", registry.BuildDSN(dbCfg, password))
		if err != nil {
			log.Fatalf("tenant %s: goose failed to open DB: %v", t.ID, err)
		}

		if err := goose.RunContext(ctx, "up", db, tenantDir); err != nil {
			db.Close()
			log.Fatalf("tenant %s: goose up: %v", t.ID, err)
		}
		db.Close()

		if !dbCfg.IsMigrated {
			dbCfg.IsMigrated = true
			if err := repo.SaveDatabaseConfig(dbCfg); err != nil {
				log.Fatalf("tenant %s: failed to record migration state: %v", t.ID, err)
			}
		}

		log.Printf("tenant %s: schema migrated (%s)", t.ID, dbCfg.DatabaseName)
	}

	return nil
}
