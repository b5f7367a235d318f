package checkout

import (
	"errors"
	"strings"

	"pixlink/internal/pixgo"
	"pixlink/internal/utils"

	"github.com/go-playground/validator/v10"
)

var formValidator = validator.New()

// Customer is what the payer types into the checkout form.
type Customer struct {
	Name  string `validate:"required,max=120"`
	CPF   string `validate:"required,len=11,numeric"`
	Email string `validate:"required,email"`
	Phone string `validate:"omitempty,max=20"`
}

// normalize trims input and reduces the CPF to digits.
func (c Customer) normalize() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		CPF:   utils.OnlyDigits(c.CPF),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Customer) validate() error {
	err := formValidator.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, fe.Field())
	}
	return ve
}

func (c Customer) toGateway() pixgo.Customer {
	return pixgo.Customer{
		Name:  c.Name,
		CPF:   c.CPF,
		Email: c.Email,
		Phone: c.Phone,
	}
}
