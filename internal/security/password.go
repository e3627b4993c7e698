package security

import (
	"github.com/cptblues/team-visio/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type BcryptConfig struct {
	Cost      int
	MinLength int
}

func (c *BcryptConfig) cost() int {
	if c.Cost < bcrypt.MinCost || c.Cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return c.Cost
}

func (c *BcryptConfig) minLength() int {
	if c.MinLength <= 0 {
		return 8
	}
	return c.MinLength
}

func HashPassword(password string, cfg *BcryptConfig) (string, error) {
	if cfg == nil {
		cfg = &BcryptConfig{}
	}
	if len(password) < cfg.minLength() {
		return "", domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.cost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
