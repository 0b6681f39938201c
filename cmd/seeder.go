package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	tenantModel "github.com/frahmantamala/farm-management/internal/core/datamodel/tenant"
	"github.com/frahmantamala/farm-management/internal/crypto"
	"github.com/frahmantamala/farm-management/internal/registry"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the platform database with sample data",
	Long:  `Seed the platform database with a demo administrator and a demo tenant, then seed the demo tenant database with users, modules and crops for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		adminEmail := "admin@farm.dev"
		var exists int
		row := db.QueryRow("SELECT 1 FROM administrators WHERE email = $1", adminEmail)
		if err := row.Scan(&exists); err != nil {
			if _, err := db.Exec("INSERT INTO administrators (email, first_name, password_hash, role, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, true, now(), now())",
				adminEmail, "Platform", string(hash), "superadmin"); err != nil {
				log.Fatalf("failed to insert platform administrator: %v", err)
			}
			fmt.Println("Seeded platform administrator:", adminEmail)
		} else {
			fmt.Println("platform administrator already exists:", adminEmail)
		}

		cipher := crypto.NewCredentialCipher(cfg.Security.EncryptionSecret)

		demoSubdomain := "demo"
		var tenantID uuid.UUID
		row = db.QueryRow("SELECT id FROM tenants WHERE subdomain = $1", demoSubdomain)
		if err := row.Scan(&tenantID); err != nil {
			tenantID = uuid.New()
			if _, err := db.Exec("INSERT INTO tenants (id, company_name, email, subdomain, is_active, is_created_db, created_at, updated_at) VALUES ($1, $2, $3, $4, true, true, now(), now())",
				tenantID, "Demo Farm Co", "owner@demo.farm.dev", demoSubdomain); err != nil {
				log.Fatalf("failed to insert demo tenant: %v", err)
			}
			fmt.Println("Seeded demo tenant:", tenantID)
		} else {
			fmt.Println("demo tenant already exists:", tenantID)
		}

		dbCfg := &tenantModel.DatabaseConfig{
			TenantID:     tenantID,
			DatabaseName: envOrDefault("SEED_TENANT_DB_NAME", "farm_demo"),
			Host:         envOrDefault("SEED_TENANT_DB_HOST", "localhost"),
			Port:         5432,
			Username:     envOrDefault("SEED_TENANT_DB_USER", "postgres"),
		}
		tenantPassword := envOrDefault("SEED_TENANT_DB_PASSWORD", "postgres")

		row = db.QueryRow("SELECT 1 FROM tenant_database_configs WHERE tenant_id = $1", tenantID)
		if err := row.Scan(&exists); err != nil {
			encrypted, err := cipher.Encrypt(tenantPassword)
			if err != nil {
				log.Fatalf("failed to encrypt demo tenant database password: %v", err)
			}
			if _, err := db.Exec("INSERT INTO tenant_database_configs (tenant_id, database_name, host, port, username, password, is_migrated, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, false, now(), now())",
				tenantID, dbCfg.DatabaseName, dbCfg.Host, dbCfg.Port, dbCfg.Username, encrypted); err != nil {
				log.Fatalf("failed to insert demo tenant database config: %v", err)
			}
			fmt.Println("Seeded demo tenant database config:", dbCfg.DatabaseName)
		} else {
			fmt.Println("demo tenant database config already exists")
		}

		seedTenantDatabase(dbCfg, tenantPassword, string(hash))
	},
}

// seedTenantDatabase fills the demo tenant database with a user, the crops
// module grant, and a few crops. Skipped with a warning when the tenant
// database is unreachable.
func seedTenantDatabase(dbCfg *tenantModel.DatabaseConfig, password, passwordHash string) {
	tdb, err := sqlx.Connect("pgx", registry.BuildDSN(dbCfg, password))
	if err != nil {
		fmt.Printf("demo tenant database unreachable, skipping tenant seed: %v\n", err)
		return
	}
	defer tdb.Close()

	userEmail := "rosa@demo.farm.dev"
	var userID int64
	row := tdb.QueryRow("SELECT id FROM users WHERE email = $1", userEmail)
	if err := row.Scan(&userID); err != nil {
		if err := tdb.QueryRow("INSERT INTO users (email, first_name, last_name, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, true, now(), now()) RETURNING id",
			userEmail, "Rosa", "Demo", passwordHash).Scan(&userID); err != nil {
			log.Fatalf("failed to insert demo tenant user: %v", err)
		}
		fmt.Println("Seeded demo tenant user:", userEmail)
	} else {
		fmt.Println("demo tenant user already exists:", userEmail)
	}

	moduleName := "crops"
	var moduleID int64
	row = tdb.QueryRow("SELECT id FROM modules WHERE name = $1", moduleName)
	if err := row.Scan(&moduleID); err != nil {
		if err := tdb.QueryRow("INSERT INTO modules (name, description, is_active, created_at, updated_at) VALUES ($1, $2, true, now(), now()) RETURNING id",
			moduleName, "crop inventory management").Scan(&moduleID); err != nil {
			log.Fatalf("failed to insert crops module: %v", err)
		}
		fmt.Println("Seeded crops module")
	}

	actions := []struct {
		Name     string
		Endpoint string
	}{
		{"list crops", "/crops/all"},
		{"create crop", "/crops"},
		{"view crop", "/crops/{id}"},
	}
	for _, a := range actions {
		var exists int
		row := tdb.QueryRow("SELECT 1 FROM module_actions WHERE module_id = $1 AND name = $2", moduleID, a.Name)
		if err := row.Scan(&exists); err != nil {
			if _, err := tdb.Exec("INSERT INTO module_actions (module_id, name, path_endpoint, created_at, updated_at) VALUES ($1, $2, $3, now(), now())",
				moduleID, a.Name, a.Endpoint); err != nil {
				log.Fatalf("failed to insert module action %s: %v", a.Name, err)
			}
		}
	}

	var exists int
	row = tdb.QueryRow("SELECT 1 FROM user_modules WHERE user_id = $1 AND module_id = $2", userID, moduleID)
	if err := row.Scan(&exists); err != nil {
		if _, err := tdb.Exec("INSERT INTO user_modules (user_id, module_id, created_at) VALUES ($1, $2, now())", userID, moduleID); err != nil {
			log.Fatalf("failed to grant crops module to demo user: %v", err)
		}
		fmt.Println("Granted crops module to demo tenant user:", userEmail)
	}

	crops := []struct {
		Name    string
		Variety string
		StockKg float64
	}{
		{"tomato", "roma", 120.5},
		{"lettuce", "butterhead", 40},
		{"corn", "sweet", 300},
	}
	for _, c := range crops {
		var exists int
		row := tdb.QueryRow("SELECT 1 FROM crops WHERE name = $1 AND variety = $2", c.Name, c.Variety)
		if err := row.Scan(&exists); err != nil {
			if _, err := tdb.Exec("INSERT INTO crops (name, variety, stock_kg, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4, now(), now())",
				c.Name, c.Variety, c.StockKg, userID); err != nil {
				log.Fatalf("failed to insert crop %s: %v", c.Name, err)
			}
			fmt.Printf("Seeded crop: %s (%s)\n", c.Name, c.Variety)
		}
	}

	fmt.Println("Demo tenant database seeded successfully")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
