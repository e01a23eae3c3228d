package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/utils"

	govalidator "github.com/go-playground/validator/v10"
)

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		jsonName := strings.Split(tag, ",")[0]
		if jsonName != "" {
			fieldName = jsonName
		}
	} else {
		fieldName = utils.CamelToSnake(origFieldName)
	}
	return
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "lt":
			errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
		case "gt":
			errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "email":
			errorMsg = "Value must be a valid email address"
		case "username":
			errorMsg = "Username may only contain letters, digits and . @ + -, and must not be a reserved name"
		case "slug":
			errorMsg = "Slug may only contain letters, digits, hyphens and underscores"
		case "sortbytitlefield":
			errorMsg = "Value must be a name of one of the title fields (e.g. +name, -year, etc...)"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}

// CUSTOM VALIDATORS

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ReservedUsername can never be registered; it addresses the current user
// on the /users/me route.
const ReservedUsername = "me"

func ValidateUsername(fl govalidator.FieldLevel) bool {
	username := fl.Field().String()
	if strings.EqualFold(username, ReservedUsername) {
		return false
	}
	return usernamePattern.MatchString(username)
}

func ValidateSlug(fl govalidator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func ValidateSortByTitleField(fl govalidator.FieldLevel) bool {
	sort := strings.TrimPrefix(fl.Field().String(), "-")
	if sort == "" {
		return false
	}
	t := reflect.TypeOf(models.Title{})
	_, ok := t.FieldByNameFunc(func(s string) bool { return strings.EqualFold(sort, s) })
	return ok
}
