package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

// bindError 绑定失败统一转 400；validator 错误展开为逐字段信息
func bindError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.BadRequest("Invalid request payload")
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldName(fe.Field())] = fieldMessage(fe)
	}
	return apperr.Validation(fields)
}

func fieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain only digits"
	case "datetime":
		return "must match format " + fe.Param()
	}
	return "is invalid"
}
