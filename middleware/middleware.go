package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

// VerificadorToken valida un token de identidad emitido externamente y
// devuelve el UID verificado.
type VerificadorToken interface {
	VerificarToken(ctx context.Context, idToken string) (string, error)
}

// BuscadorPerfil carga el perfil del usuario para conocer su rol.
type BuscadorPerfil interface {
	ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error)
}

type claveContexto int

const claveIdentidad claveContexto = iota

// IdentidadDe recupera la identidad verificada que dejó el middleware de
// autenticación. Devuelve el valor cero si la ruta no pasó por el gate.
func IdentidadDe(r *http.Request) servicios.Identidad {
	identidad, _ := r.Context().Value(claveIdentidad).(servicios.Identidad)
	return identidad
}

// Autenticacion verifica el token Bearer contra el proveedor de identidad
// y adjunta la identidad (UID, rol, nombre) al contexto de la petición.
// El rol sale del perfil en el almacén; si no hay perfil, queda vacío.
func Autenticacion(verificador VerificadorToken, perfiles BuscadorPerfil, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encabezado := r.Header.Get("Authorization")
			if !strings.HasPrefix(encabezado, "Bearer ") {
				http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
				return
			}

			idToken := strings.TrimPrefix(encabezado, "Bearer ")
			uid, err := verificador.VerificarToken(r.Context(), idToken)
			if err != nil {
				log.Warnf("Token rechazado: %v", err)
				http.Error(w, "Unauthorized: Invalid token", http.StatusForbidden)
				return
			}

			identidad := servicios.Identidad{UID: uid}
			if usuario, err := perfiles.ObtenerUsuario(r.Context(), uid); err == nil {
				identidad.Rol = usuario.Rol
				identidad.Nombre = strings.TrimSpace(usuario.Nombre + " " + usuario.Apellido)
			}

			ctx := context.WithValue(r.Context(), claveIdentidad, identidad)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logging registra cada solicitud HTTP con su duración.
func Logging(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inicio := time.Now()
			next.ServeHTTP(w, r)
			log.Infof("%s %s (%s)", r.Method, r.URL.Path, time.Since(inicio))
		})
	}
}
