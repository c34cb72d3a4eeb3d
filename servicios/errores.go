package servicios

import "errors"

// Errores centinela de la capa de servicios. Los handlers los traducen
// a códigos HTTP (400, 403, 404); cualquier otro error es un 500.
var (
	// ErrValidacion indica datos de entrada incompletos o inválidos.
	ErrValidacion = errors.New("datos inválidos")

	// ErrNoEncontrado indica que el documento solicitado no existe.
	ErrNoEncontrado = errors.New("no encontrado")

	// ErrProhibido indica que el usuario no tiene permiso para la operación,
	// o que la operación no está permitida en el estado actual del caso.
	ErrProhibido = errors.New("operación no permitida")
)
