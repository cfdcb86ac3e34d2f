// Package web defines common components for a web application.
package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorBody is the JSON representation of an API error.
type ErrorBody struct {
	Code     string `json:"code,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken           string     `json:"access_token,omitempty"`
	AccessTokenExpiresAt  *time.Time `json:"access_token_expires_at,omitempty"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	Data                  any        `json:"data,omitempty"`
	Error                 *ErrorBody `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: &ErrorBody{Message: err.Error()}}
}

// CodedError wraps err into a response carrying a machine readable code and category.
func CodedError(code, category string, err error) Response {
	return Response{
		Error: &ErrorBody{
			Code:     code,
			Category: category,
			Message:  err.Error(),
		},
	}
}

// Message builds an error response from a plain message.
func Message(msg string) Response {
	return Response{Error: &ErrorBody{Message: msg}}
}

// BindingError builds an error response from a request binding error.
//
// Validation errors are rendered with GetErrorMsg, anything else with its own message.
func BindingError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return Message(GetErrorMsg(ve))
	}

	return Error(err)
}

// GetErrorMsg returns human readable message for the first failed field.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return ""
	}

	fe := ve[0]
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " field is required"
	case "min":
		return fmt.Sprintf("%s field should be greater than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s field should be less than or equal to %s", field, fe.Param())
	case "alphanum":
		return field + " field should contain only letters and digits"
	case "email":
		return field + " field should be a valid email"
	case "currency":
		return field + " field has unsupported currency"
	case "nefield":
		return fmt.Sprintf("%s field should differ from %s", field, fe.Param())
	}

	return field + " field is invalid"
}
