package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// fieldMessages holds the user-facing text for "<json field>.<tag>" failures.
var fieldMessages = map[string]string{
	"bi.required":        "bi é obrigatório",
	"bi.digits":          "bi deve conter 11 dígitos",
	"bi.len":             "bi deve conter 11 dígitos",
	"phone.required":     "Telefone é obrigatório",
	"phone.digits":       "Telefone deve conter 10 ou 11 dígitos",
	"phone.min":          "Telefone deve conter 10 ou 11 dígitos",
	"phone.max":          "Telefone deve conter 10 ou 11 dígitos",
	"address.required":   "Endereço é obrigatório",
	"address.min":        "Endereço deve ter pelo menos 10 caracteres",
	"city.required":      "Cidade é obrigatória",
	"city.min":           "Cidade deve ter pelo menos 2 caracteres",
	"state.required":     "Estado é obrigatório",
	"state.len":          "Estado deve ter 2 caracteres",
	"zipCode.required":   "CEP é obrigatório",
	"zipCode.digits":     "CEP deve conter 8 dígitos",
	"zipCode.len":        "CEP deve conter 8 dígitos",
	"birthDate.required": "Data de nascimento inválida",
	"income.required":    "Renda é obrigatória",
	"income.gt":          "Renda deve ser positiva",
	"creditScore.gte":    "Score deve estar entre 0 e 1000",
	"creditScore.lte":    "Score deve estar entre 0 e 1000",
	"email.required":     "Email inválido",
	"email.email":        "Email inválido",
	"password.required":  "Senha é obrigatória",
	"password.min":       "Senha deve ter pelo menos 6 caracteres",
	"name.required":      "Nome deve ter pelo menos 2 caracteres",
	"name.min":           "Nome deve ter pelo menos 2 caracteres",
	"role.oneof":         "Role inválida",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	return v
}

// describeValidation flattens validator errors into "field: message" pairs.
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, found := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !found {
			msg = "falhou na regra " + fe.Tag()
		}
		parts = append(parts, fe.Field()+": "+msg)
	}
	return strings.Join(parts, ", ")
}

type createBorrowerRequest struct {
	UserID      string           `json:"userId"`
	NationalID  string           `json:"bi" validate:"required,digits,len=11"`
	Phone       string           `json:"phone" validate:"required,digits,min=10,max=11"`
	Address     string           `json:"address" validate:"required,min=10"`
	City        string           `json:"city" validate:"required,min=2"`
	State       string           `json:"state" validate:"required,len=2"`
	ZipCode     string           `json:"zipCode" validate:"required,digits,len=8"`
	BirthDate   string           `json:"birthDate" validate:"required"`
	Income      *decimal.Decimal `json:"income" validate:"required,gt=0"`
	CreditScore *int32           `json:"creditScore" validate:"omitnil,gte=0,lte=1000"`
}

type updateBorrowerRequest struct {
	NationalID  *string          `json:"bi" validate:"omitnil,digits,len=11"`
	Phone       *string          `json:"phone" validate:"omitnil,digits,min=10,max=11"`
	Address     *string          `json:"address" validate:"omitnil,min=10"`
	City        *string          `json:"city" validate:"omitnil,min=2"`
	State       *string          `json:"state" validate:"omitnil,len=2"`
	ZipCode     *string          `json:"zipCode" validate:"omitnil,digits,len=8"`
	BirthDate   *string          `json:"birthDate"`
	Income      *decimal.Decimal `json:"income" validate:"omitnil,gt=0"`
	CreditScore *int32           `json:"creditScore" validate:"omitnil,gte=0,lte=1000"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=2"`
	Email    *string `json:"email" validate:"omitnil,email"`
	Role     *string `json:"role" validate:"omitnil,oneof=USER ADMIN LOAN_OFFICER MANAGER"`
	IsActive *bool   `json:"isActive"`
}

type validatorFunc func(s any) error
