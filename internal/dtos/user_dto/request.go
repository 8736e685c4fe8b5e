package user_dto

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
)

type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=5"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Username *string `json:"username" validate:"omitempty,min=3"`
	IsActive bool    `json:"isActive"`
}

type ListUsersQuery struct {
	Created string `json:"created" validate:"required,oneof=asc desc"`
}

func (q ListUsersQuery) Direction() entity.SortDirection {
	if q.Created == "asc" {
		return entity.Ascending
	}
	return entity.Descending
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseCreateUser coerces a decoded JSON object into a CreateUserRequest and
// reports every failing field. Keys other than the payload fields are dropped.
func ParseCreateUser(raw map[string]any) (CreateUserRequest, []app_error.FieldError) {
	var (
		req     CreateUserRequest
		details []app_error.FieldError
		badType = map[string]bool{}
	)

	str := func(key string) string {
		v, ok := raw[key]
		if !ok || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			badType[key] = true
			details = append(details, app_error.FieldError{Field: key, Message: "must be a string"})
			return ""
		}
		return s
	}

	req.Name = str("name")
	req.Email = str("email")
	req.Password = str("password")
	if _, ok := raw["username"]; ok && raw["username"] != nil {
		username := str("username")
		if !badType["username"] {
			req.Username = &username
		}
	}

	req.IsActive = true
	if v, ok := raw["isActive"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			details = append(details, app_error.FieldError{Field: "isActive", Message: "must be a boolean"})
		} else {
			req.IsActive = b
		}
	}

	if err := validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range app_error.FromValidationErrors(verrs) {
				if badType[fe.Field] {
					continue
				}
				details = append(details, fe)
			}
		} else {
			details = append(details, app_error.FieldError{Field: "body", Message: err.Error()})
		}
	}

	return req, details
}

// ParseListUsers reads the created direction; input case is ignored.
func ParseListUsers(query url.Values) (ListUsersQuery, []app_error.FieldError) {
	q := ListUsersQuery{Created: strings.ToLower(strings.TrimSpace(query.Get("created")))}

	if err := validate.Struct(q); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return q, []app_error.FieldError{{Field: "created", Message: err.Error()}}
		}
		return q, app_error.FromValidationErrors(verrs)
	}

	return q, nil
}

// DescribeFailures is a short summary used as the validation message.
func DescribeFailures(details []app_error.FieldError) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, fmt.Sprintf("%s %s", d.Field, d.Message))
	}
	return strings.Join(parts, "; ")
}
