// Package handlers expone la API HTTP JSON de la plataforma.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"plataformaclinica/servicios"
)

func responderJSON(w http.ResponseWriter, codigo int, datos interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(codigo)
	if datos != nil {
		if err := json.NewEncoder(w).Encode(datos); err != nil {
			logrus.Errorf("Error al codificar la respuesta JSON: %v", err)
		}
	}
}

func responderMensaje(w http.ResponseWriter, codigo int, mensaje string) {
	responderJSON(w, codigo, map[string]string{"message": mensaje})
}

// responderError traduce la taxonomía de errores de servicios a códigos
// HTTP. Los errores de infraestructura se registran y se responden con un
// mensaje genérico, sin detalle interno.
func responderError(w http.ResponseWriter, log *logrus.Logger, err error, generico string) {
	codigo := http.StatusInternalServerError
	switch {
	case errors.Is(err, servicios.ErrValidacion):
		codigo = http.StatusBadRequest
	case errors.Is(err, servicios.ErrProhibido):
		codigo = http.StatusForbidden
	case errors.Is(err, servicios.ErrNoEncontrado):
		codigo = http.StatusNotFound
	case errors.Is(err, servicios.ErrEmailEnUso):
		codigo = http.StatusConflict
	}

	if codigo == http.StatusInternalServerError {
		log.Errorf("%s: %v", generico, err)
		responderMensaje(w, codigo, generico)
		return
	}
	responderMensaje(w, codigo, err.Error())
}
