package servicios

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"plataformaclinica/models"
)

// ErrEmailEnUso indica que el correo ya tiene una cuenta en el proveedor
// de identidad.
var ErrEmailEnUso = errors.New("el correo electrónico ya está en uso")

// ProveedorIdentidad abstrae el alta de cuentas en el proveedor de
// identidad externo (Firebase). La verificación de tokens vive en el
// middleware; aquí solo se crean cuentas.
type ProveedorIdentidad interface {
	CrearCuenta(ctx context.Context, email, contrasena, nombreCompleto string) (string, error)
}

// RegistroUsuario es la solicitud de alta de un usuario nuevo.
type RegistroUsuario struct {
	Nombre     string `json:"nombre" validate:"required,min=2"`
	Apellido   string `json:"apellido" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required,min=6"`
	Rol        string `json:"rol" validate:"required,oneof=medico atencion administrador"`
}

// ServicioUsuarios gestiona el alta y la consulta de perfiles. La cuenta
// se crea en el proveedor de identidad; el rol y los datos del perfil se
// guardan en el almacén de documentos.
type ServicioUsuarios struct {
	almacen   Almacen
	identidad ProveedorIdentidad
	valida    *validator.Validate
	log       *logrus.Logger
}

func NuevoServicioUsuarios(almacen Almacen, identidad ProveedorIdentidad, log *logrus.Logger) *ServicioUsuarios {
	return &ServicioUsuarios{
		almacen:   almacen,
		identidad: identidad,
		valida:    validator.New(),
		log:       log,
	}
}

// Registrar crea la cuenta en el proveedor de identidad y guarda el
// perfil con su rol. Devuelve el UID de la cuenta nueva.
func (s *ServicioUsuarios) Registrar(ctx context.Context, solicitud RegistroUsuario) (string, error) {
	if err := s.valida.Struct(solicitud); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidacion, err)
	}

	nombreCompleto := solicitud.Nombre + " " + solicitud.Apellido
	uid, err := s.identidad.CrearCuenta(ctx, solicitud.Email, solicitud.Contrasena, nombreCompleto)
	if err != nil {
		return "", err
	}

	usuario := &models.Usuario{
		ID:       uid,
		Nombre:   solicitud.Nombre,
		Apellido: solicitud.Apellido,
		Email:    solicitud.Email,
		Rol:      solicitud.Rol,
	}
	if err := s.almacen.GuardarUsuario(ctx, usuario); err != nil {
		return "", err
	}

	s.log.Infof("Usuario %s registrado con rol %s", uid, solicitud.Rol)
	return uid, nil
}

// ObtenerUsuario devuelve el perfil de un usuario por su UID.
func (s *ServicioUsuarios) ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error) {
	usuario, err := s.almacen.ObtenerUsuario(ctx, uid)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	return usuario, nil
}

// ListarMedicos devuelve todos los médicos especialistas.
func (s *ServicioUsuarios) ListarMedicos(ctx context.Context) ([]models.Usuario, error) {
	return s.almacen.BuscarUsuariosPorRol(ctx, models.RolMedico)
}
