package internal

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey string

// ContextTenantDBKey carries the live tenant connection attached by the
// tenant resolution middleware. Everything downstream that touches tenant
// data reads the connection from here: resolvers and business handlers must
// never open or choose a connection on their own.
const ContextTenantDBKey ctxKey = "tenantDB"

func TenantDBFromContext(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	db, ok := ctx.Value(ContextTenantDBKey).(*gorm.DB)
	return db, ok && db != nil
}

func ContextWithTenantDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, ContextTenantDBKey, db)
}
