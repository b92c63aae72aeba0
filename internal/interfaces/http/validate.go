package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct valida el DTO y responde 400 con los campos fallidos.
// Devuelve true si la respuesta ya fue escrita.
func validateStruct(c *fiber.Ctx, v any) (bool, error) {
	err := validate.Struct(v)
	if err == nil {
		return false, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return true, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s:%s", fe.Namespace(), fe.Tag()))
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "campos inválidos: " + strings.Join(fields, ", "),
	})
}
