package dto

import "github.com/gofiber/fiber/v2"

// Envelope is the body of every API response.
type Envelope struct {
	OK      bool   `json:"ok"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Respond writes a success envelope.
func Respond(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(Envelope{OK: code < fiber.StatusBadRequest, Code: code, Message: message, Data: data})
}

// OK writes a 200 envelope.
func OK(c *fiber.Ctx, message string, data any) error {
	return Respond(c, fiber.StatusOK, message, data)
}

// Created writes a 201 envelope.
func Created(c *fiber.Ctx, message string, data any) error {
	return Respond(c, fiber.StatusCreated, message, data)
}
