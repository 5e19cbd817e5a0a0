package app

import (
	"context"

	"github.com/nickbelling/FlexFlow/internal/models"
	"github.com/nickbelling/FlexFlow/internal/repositories"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// seedAdminUsername is also the initial password; the account is expected
// to change it on first sign-in.
const seedAdminUsername = "admin"

// Seed ensures the built-in roles exist and creates the bootstrap admin
// account if no user with that name is present. Re-running is a no-op.
func (a *App) Seed(ctx context.Context, userRepo repositories.UserRepository) error {
	for _, role := range []string{models.RoleAdmin, models.RoleUser} {
		if _, err := userRepo.EnsureRole(ctx, role); err != nil {
			return err
		}
	}

	existing, err := userRepo.GetByUsername(ctx, seedAdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		utils.Logger.Info("Admin user already exists; skipping seed.")
		return nil
	}

	hash, err := utils.HashPassword(seedAdminUsername)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:       seedAdminUsername,
		Email:          a.Config.AdminEmail,
		DisplayName:    "Administrator",
		PasswordHash:   hash,
		EmailConfirmed: true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	if err := userRepo.AssignRole(ctx, admin.ID, models.RoleAdmin); err != nil {
		return err
	}

	utils.Logger.Infof("Seeded admin user %q (id %d) with email %s", admin.Username, admin.ID, admin.Email)
	return nil
}
