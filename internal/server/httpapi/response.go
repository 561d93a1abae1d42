package httpapi

import "github.com/gofiber/fiber/v3"

const MessageInternalServerError = "internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Error: message})
}

func writeMessage(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(messageResponse{Message: message})
}
