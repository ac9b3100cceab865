package user

import (
	"context"

	"github.com/antonminaichev/gophershop/internal/types/user"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}
