package service

import (
	"context"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
)

// authorizeOwnerScope 调用者必须是 owner 本人或归属该 owner 的协助照护者
func authorizeOwnerScope(ctx context.Context, usersRepo repository.UsersRepository, callerID, ownerID string) error {
	if callerID == ownerID {
		return nil
	}
	caller, err := usersRepo.GetUser(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.OwnerID.Valid && caller.OwnerID.String == ownerID {
		return nil
	}
	return fmt.Errorf("access denied")
}
