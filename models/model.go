package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estados posibles de un caso clínico.
const (
	EstadoAbierto = "abierto"
	EstadoCerrado = "cerrado"
)

// Roles de usuario reconocidos por la plataforma.
const (
	RolMedico        = "medico"
	RolAtencion      = "atencion"
	RolAdministrador = "administrador"
	RolSistema       = "sistema"
)

// Tipos de notificación.
const (
	TipoNuevoCaso       = "nuevo_caso"
	TipoNuevoComentario = "nuevo_comentario"
)

// Archivo describe un archivo adjunto a un caso (DICOM, imagen, etc).
type Archivo struct {
	Nombre     string `bson:"nombre" json:"nombre"`
	UploadPath string `bson:"uploadPath" json:"uploadPath"`
	URL        string `bson:"url" json:"url"`
	Tamano     int64  `bson:"tamano" json:"tamano"`
	Tipo       string `bson:"tipo" json:"tipo"`
}

// Caso representa una interconsulta clínica entre el médico que refiere
// y el especialista asignado.
type Caso struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PacienteNSS              string             `bson:"pacienteNSS" json:"pacienteNSS"`
	PacienteNombreCompleto   string             `bson:"pacienteNombreCompleto" json:"pacienteNombreCompleto"`
	MotivoConsulta           string             `bson:"motivoConsulta" json:"motivoConsulta"`
	Archivos                 []Archivo          `bson:"archivos" json:"archivos"`
	Diagnostico              string             `bson:"diagnostico,omitempty" json:"diagnostico,omitempty"`
	Estado                   string             `bson:"estado" json:"estado"`
	FechaCreacion            time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	FechaCierre              *time.Time         `bson:"fechaCierre,omitempty" json:"fechaCierre,omitempty"`
	MedicoGeneralID          string             `bson:"medicoGeneralId" json:"medicoGeneralId"`
	MedicoGeneralNombre      string             `bson:"medicoGeneralNombre" json:"medicoGeneralNombre"`
	MedicoEspecialistaID     string             `bson:"medicoEspecialistaId" json:"medicoEspecialistaId"`
	MedicoEspecialistaNombre string             `bson:"medicoEspecialistaNombre" json:"medicoEspecialistaNombre"`

	// Resumen desnormalizado del último comentario, para el listado.
	LastCommentTimestamp *time.Time `bson:"lastCommentTimestamp,omitempty" json:"lastCommentTimestamp,omitempty"`
	LastCommentAutor     string     `bson:"lastCommentAutor,omitempty" json:"lastCommentAutor,omitempty"`
	LastCommentText      string     `bson:"lastCommentText,omitempty" json:"lastCommentText,omitempty"`
}

// Comentario pertenece a exactamente un caso. Una vez creado no se edita
// ni se elimina.
type Comentario struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CasoID        primitive.ObjectID `bson:"casoId" json:"casoId"`
	Texto         string             `bson:"texto" json:"texto"`
	AutorID       string             `bson:"autorId" json:"autorId"`
	AutorNombre   string             `bson:"autorNombre" json:"autorNombre"`
	AutorRol      string             `bson:"autorRol" json:"autorRol"`
	FechaCreacion time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
}

// Notificacion es un aviso dentro de la aplicación para un usuario.
type Notificacion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UsuarioID     string             `bson:"usuarioId" json:"usuarioId"`
	Tipo          string             `bson:"tipo" json:"tipo"`
	Mensaje       string             `bson:"mensaje" json:"mensaje"`
	Leido         bool               `bson:"leido" json:"leido"`
	FechaCreacion time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	CasoID        string             `bson:"casoId" json:"casoId"`
	Link          string             `bson:"link" json:"link"`
}

// Usuario representa el perfil de un usuario. El ID es el UID de Firebase;
// la contraseña vive en el proveedor de identidad, no aquí.
type Usuario struct {
	ID       string `bson:"_id" json:"id"`
	Nombre   string `bson:"nombre" json:"nombre"`
	Apellido string `bson:"apellido" json:"apellido"`
	Email    string `bson:"email" json:"email"`
	Rol      string `bson:"rol" json:"rol"`
}

// Paciente representa un paciente. El NSS se usa como ID del documento
// para evitar duplicados.
type Paciente struct {
	NSS             string `bson:"_id" json:"nss"`
	Nombre          string `bson:"nombre" json:"nombre"`
	ApellidoP       string `bson:"apellidoP" json:"apellidoP"`
	ApellidoM       string `bson:"apellidoM" json:"apellidoM"`
	FechaNacimiento string `bson:"fechaNacimiento,omitempty" json:"fechaNacimiento,omitempty"`
	Sexo            string `bson:"sexo,omitempty" json:"sexo,omitempty"`
	Telefono        string `bson:"telefono,omitempty" json:"telefono,omitempty"`
	Correo          string `bson:"correo,omitempty" json:"correo,omitempty"`
}
