package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

// HandlerArchivos sube y sirve los archivos adjuntos desde el almacén de
// objetos. La ruta de subida generada es la que después referencia el
// caso en sus descriptores de archivo.
type HandlerArchivos struct {
	archivos servicios.ArchivosStore
	baseURL  string
	log      *logrus.Logger
}

func NuevoHandlerArchivos(archivos servicios.ArchivosStore, baseURL string, log *logrus.Logger) *HandlerArchivos {
	return &HandlerArchivos{archivos: archivos, baseURL: baseURL, log: log}
}

// Subir maneja POST /api/archivos (multipart, campo "archivo").
func (h *HandlerArchivos) Subir(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		responderMensaje(w, http.StatusBadRequest, "Error al procesar los archivos")
		return
	}

	archivo, encabezado, err := r.FormFile("archivo")
	if err != nil {
		responderMensaje(w, http.StatusBadRequest, "Debe proporcionar un archivo")
		return
	}
	defer archivo.Close()

	uploadPath := "casos/" + primitive.NewObjectID().Hex() + "_" + encabezado.Filename
	if err := h.archivos.Subir(r.Context(), uploadPath, archivo); err != nil {
		h.log.Errorf("Error al subir el archivo %s: %v", encabezado.Filename, err)
		responderMensaje(w, http.StatusInternalServerError, "Error al subir el archivo")
		return
	}

	descriptor := models.Archivo{
		Nombre:     encabezado.Filename,
		UploadPath: uploadPath,
		URL:        h.baseURL + "/api/archivos/" + uploadPath,
		Tamano:     encabezado.Size,
		Tipo:       encabezado.Header.Get("Content-Type"),
	}
	responderJSON(w, http.StatusCreated, descriptor)
}

// Descargar maneja GET /api/archivos/{path}.
func (h *HandlerArchivos) Descargar(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]

	lector, err := h.archivos.Abrir(r.Context(), path)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			responderMensaje(w, http.StatusNotFound, "Archivo no encontrado")
			return
		}
		h.log.Errorf("Error al abrir el archivo %s: %v", path, err)
		responderMensaje(w, http.StatusInternalServerError, "Error al buscar el archivo")
		return
	}
	defer lector.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, lector); err != nil {
		h.log.Errorf("Error al enviar el archivo %s: %v", path, err)
	}
}
