// Package seed bootstraps the first SuperAdmin and optional staff accounts.
package seed

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/security"
)

const generatedPasswordLength = 16

// Account describes one user to seed. An empty Password is generated.
type Account struct {
	FirstName    string
	LastName     string
	EmailAddress string
	UserName     string
	Password     string
	UserType     enums.UserType
}

// Result reports what happened to one account.
type Result struct {
	UserName string
	Created  bool
	// Password is set only when it was generated for a new account.
	Password string
}

type Seeder struct {
	db   *db.Client
	logg *logger.Logger
}

func New(client *db.Client, logg *logger.Logger) (*Seeder, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &Seeder{db: client, logg: logg}, nil
}

// Seed inserts each account unless its username or email is already taken.
func (s *Seeder) Seed(ctx context.Context, accounts ...Account) ([]Result, error) {
	results := make([]Result, 0, len(accounts))
	for _, acct := range accounts {
		res, err := s.seedOne(ctx, acct)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Seeder) seedOne(ctx context.Context, acct Account) (Result, error) {
	acct.UserName = strings.TrimSpace(acct.UserName)
	acct.EmailAddress = strings.TrimSpace(acct.EmailAddress)
	res := Result{UserName: acct.UserName}

	if acct.UserName == "" || acct.EmailAddress == "" {
		return res, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}
	if acct.UserType == "" {
		acct.UserType = enums.UserTypeAdmin
	}
	if !acct.UserType.IsValid() {
		return res, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid user type %q", acct.UserType))
	}

	password := acct.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(generatedPasswordLength)
		if err != nil {
			return res, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
	}

	ctx = s.logg.WithField(ctx, "user_name", acct.UserName)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)
		taken, err := repo.UserNameExists(ctx, acct.UserName, 0)
		if err != nil {
			return err
		}
		if !taken {
			taken, err = repo.EmailExists(ctx, acct.EmailAddress, 0)
			if err != nil {
				return err
			}
		}
		if taken {
			s.logg.Info(ctx, "seed.skipped existing account")
			return nil
		}

		hash, salt, err := security.HashNew(password)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, &models.User{
			FirstName:    strings.TrimSpace(acct.FirstName),
			LastName:     strings.TrimSpace(acct.LastName),
			EmailAddress: acct.EmailAddress,
			UserName:     acct.UserName,
			UserType:     acct.UserType,
			PasswordHash: hash,
			PasswordSalt: salt,
		}); err != nil {
			return err
		}
		res.Created = true
		return nil
	})
	if err != nil {
		return Result{UserName: acct.UserName}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed account")
	}

	if res.Created {
		s.logg.Info(ctx, "seed.created account")
		if acct.Password == "" {
			res.Password = password
		}
	}
	return res, nil
}

// StaffAccounts returns n Admin accounts named staff1..staffN under domain.
func StaffAccounts(n int, domain string) []Account {
	out := make([]Account, 0, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("staff%d", i)
		out = append(out, Account{
			FirstName:    "Staff",
			LastName:     fmt.Sprintf("Member %d", i),
			EmailAddress: name + "@" + domain,
			UserName:     name,
			UserType:     enums.UserTypeAdmin,
		})
	}
	return out
}
