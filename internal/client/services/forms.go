package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophrecharge/internal/client/client"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/go-playground/validator/v10"
)

// phonePattern accepts Cameroonian mobile numbers with an optional
// country prefix.
var phonePattern = regexp.MustCompile(`^(\+237|237)?[6-9]\d{8}$`)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ValidPhone(s)
	})
	return v
}

// ValidPhone reports whether s is a valid phone number; spaces are ignored.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

func NormalizePhone(s string) string {
	return strings.Join(strings.Fields(s), "")
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type RegisterForm struct {
	FirstName       string           `form:"firstName" validate:"required,min=2"`
	LastName        string           `form:"lastName" validate:"required,min=2"`
	Email           string           `form:"email" validate:"required,email"`
	Password        string           `form:"password" validate:"required,min=8"`
	ConfirmPassword string           `form:"confirmPassword" validate:"eqfield=Password"`
	Phone           string           `form:"phone" validate:"required,phone"`
	Address         string           `form:"address" validate:"required,min=5"`
	Code            string           `form:"code" validate:"required,min=3"`
	MeterType       models.MeterType `form:"meter_type" validate:"required,oneof=1 2"`
}

func (f RegisterForm) toRequest() models.RegisterData {
	return models.RegisterData{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
		Code:      strings.TrimSpace(f.Code),
		Phone:     NormalizePhone(f.Phone),
		Address:   strings.TrimSpace(f.Address),
		MeterType: int(f.MeterType),
	}
}

// ProfileForm holds the fields to change; nil fields are left alone.
type ProfileForm struct {
	Name      *string           `form:"name" validate:"omitempty,min=2"`
	Email     *string           `form:"email" validate:"omitempty,email"`
	Phone     *string           `form:"phone" validate:"omitempty,phone"`
	Address   *string           `form:"address" validate:"omitempty,min=5"`
	MeterType *models.MeterType `form:"meter_type" validate:"omitempty,oneof=1 2"`
}

func (f ProfileForm) toRequest(userID int64) models.ProfileUpdate {
	upd := models.ProfileUpdate{
		Name:    f.Name,
		Email:   f.Email,
		Address: f.Address,
	}
	if f.Name != nil || f.Email != nil || f.Phone != nil || f.Address != nil || f.MeterType != nil {
		upd.ID = &userID
	}
	if f.Phone != nil {
		p := NormalizePhone(*f.Phone)
		upd.Phone = &p
	}
	if f.MeterType != nil {
		mt := int(*f.MeterType)
		upd.MeterType = &mt
	}
	return upd
}

type RechargeForm struct {
	Meter            int64                `form:"meter" validate:"required"`
	Amount           float64              `form:"amount" validate:"required,gt=0"`
	PaymentMethod    models.PaymentMethod `form:"payment_method" validate:"required,oneof=cash om momo"`
	SubscriberMsisdn string               `form:"subscriberMsisdn" validate:"required_unless=PaymentMethod cash,phone"`
}

// validateForm returns the first rule a form breaks as a
// *client.ValidationError, so form and API-client failures look alike.
func validateForm(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &client.ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required", "required_unless":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "phone":
		msg = "must be a valid phone number"
	case "min":
		msg = fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", fe.Param())
	case "eqfield":
		msg = "does not match"
	default:
		msg = fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	return &client.ValidationError{Field: fe.Field(), Message: msg}
}
