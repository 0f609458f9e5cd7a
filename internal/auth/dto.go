package auth

import "github.com/frahmantamala/attendance-management/internal/core/common/validation"

// LoginDTO accepts either a username or an email in Login.
type LoginDTO struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}
