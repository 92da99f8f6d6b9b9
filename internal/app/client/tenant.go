package client

import (
	"context"
	"fmt"
)

// checkTenant сверяет sub токена с хозяйством локальной базы. База без
// привязки привязывается к хозяйству токена. Токены без sub не проверяются.
func checkTenant(ctx context.Context, storage Storage, token string) error {
	sub := TokenSubject(token)
	if sub == "" {
		return nil
	}

	bound, err := storage.Tenant(ctx)
	if err != nil {
		return err
	}

	switch bound {
	case sub:
		return nil
	case "":
		return storage.BindTenant(ctx, sub)
	default:
		return fmt.Errorf("%w: база привязана к %q, токен выдан %q", ErrTenantMismatch, bound, sub)
	}
}
