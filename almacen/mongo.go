// Package almacen implementa el acceso al almacén de documentos (MongoDB)
// y al almacén de archivos (GridFS).
package almacen

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plataformaclinica/models"
	"plataformaclinica/servicios"
)

// Nombres de las colecciones.
const (
	colCasos          = "casos"
	colComentarios    = "comentarios"
	colNotificaciones = "notificaciones"
	colUsuarios       = "usuarios"
	colPacientes      = "pacientes"
)

// Mongo implementa servicios.Almacen sobre una base de datos MongoDB.
type Mongo struct {
	cliente *mongo.Client
	bd      *mongo.Database
	log     *logrus.Logger
}

var _ servicios.Almacen = (*Mongo)(nil)

// Conectar inicializa el cliente de MongoDB, verifica la conexión y
// devuelve el almacén junto con el bucket de GridFS para archivos.
func Conectar(ctx context.Context, uri, nombreBD string, log *logrus.Logger) (*Mongo, *gridfs.Bucket, error) {
	clientOptions := options.Client().ApplyURI(uri)
	cliente, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("error al conectar a MongoDB: %v", err)
	}

	// Asegurarse de que la conexión esté establecida
	if err := cliente.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("error al hacer ping a MongoDB: %v", err)
	}

	bd := cliente.Database(nombreBD)

	// Crear el bucket de GridFS para los archivos adjuntos
	bucket, err := gridfs.NewBucket(bd, options.GridFSBucket().SetName("archivos"))
	if err != nil {
		return nil, nil, fmt.Errorf("error al crear el bucket de GridFS: %v", err)
	}

	return &Mongo{cliente: cliente, bd: bd, log: log}, bucket, nil
}

// Desconectar cierra la conexión con MongoDB.
func (m *Mongo) Desconectar(ctx context.Context) error {
	return m.cliente.Disconnect(ctx)
}

// ==== Casos ====

func (m *Mongo) InsertarCaso(ctx context.Context, caso *models.Caso) (string, error) {
	caso.ID = primitive.NewObjectID()
	_, err := m.bd.Collection(colCasos).InsertOne(ctx, caso)
	if err != nil {
		return "", fmt.Errorf("error al insertar el caso: %v", err)
	}
	return caso.ID.Hex(), nil
}

func (m *Mongo) ObtenerCaso(ctx context.Context, id string) (*models.Caso, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Un id malformado nunca corresponde a un documento existente.
		return nil, mongo.ErrNoDocuments
	}

	var caso models.Caso
	err = m.bd.Collection(colCasos).FindOne(ctx, bson.M{"_id": objectID}).Decode(&caso)
	if err != nil {
		return nil, err
	}
	return &caso, nil
}

func (m *Mongo) BuscarCasos(ctx context.Context, filtro servicios.FiltroCasos) ([]models.Caso, error) {
	consulta := bson.M{}
	if filtro.MedicoEspecialistaID != "" {
		consulta["medicoEspecialistaId"] = filtro.MedicoEspecialistaID
	}
	if filtro.MedicoGeneralID != "" {
		consulta["medicoGeneralId"] = filtro.MedicoGeneralID
	}
	if filtro.Estado != "" {
		consulta["estado"] = filtro.Estado
	}
	if filtro.PacienteNSS != "" {
		consulta["pacienteNSS"] = filtro.PacienteNSS
	}

	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: -1}})
	cursor, err := m.bd.Collection(colCasos).Find(ctx, consulta, opts)
	if err != nil {
		return nil, fmt.Errorf("error al buscar casos: %v", err)
	}
	defer cursor.Close(ctx)

	casos := []models.Caso{}
	if err := cursor.All(ctx, &casos); err != nil {
		return nil, fmt.Errorf("error al decodificar casos: %v", err)
	}
	return casos, nil
}

func (m *Mongo) ActualizarCaso(ctx context.Context, id string, campos map[string]interface{}) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	resultado, err := m.bd.Collection(colCasos).UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": campos})
	if err != nil {
		return fmt.Errorf("error al actualizar el caso: %v", err)
	}
	if resultado.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// EliminarCasoEnLote borra el caso y todos sus comentarios como una sola
// operación atómica.
func (m *Mongo) EliminarCasoEnLote(ctx context.Context, casoID string) error {
	objectID, err := primitive.ObjectIDFromHex(casoID)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	return m.enTransaccion(ctx, func(sc mongo.SessionContext) error {
		if _, err := m.bd.Collection(colComentarios).DeleteMany(sc, bson.M{"casoId": objectID}); err != nil {
			return fmt.Errorf("error al eliminar comentarios del caso %s: %v", casoID, err)
		}
		if _, err := m.bd.Collection(colCasos).DeleteOne(sc, bson.M{"_id": objectID}); err != nil {
			return fmt.Errorf("error al eliminar el caso %s: %v", casoID, err)
		}
		return nil
	})
}

// ==== Comentarios ====

func (m *Mongo) InsertarComentario(ctx context.Context, comentario *models.Comentario) (string, error) {
	comentario.ID = primitive.NewObjectID()
	_, err := m.bd.Collection(colComentarios).InsertOne(ctx, comentario)
	if err != nil {
		return "", fmt.Errorf("error al insertar el comentario: %v", err)
	}
	return comentario.ID.Hex(), nil
}

func (m *Mongo) ComentariosDeCaso(ctx context.Context, casoID string) ([]models.Comentario, error) {
	objectID, err := primitive.ObjectIDFromHex(casoID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: 1}})
	cursor, err := m.bd.Collection(colComentarios).Find(ctx, bson.M{"casoId": objectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error al buscar comentarios: %v", err)
	}
	defer cursor.Close(ctx)

	comentarios := []models.Comentario{}
	if err := cursor.All(ctx, &comentarios); err != nil {
		return nil, fmt.Errorf("error al decodificar comentarios: %v", err)
	}
	return comentarios, nil
}

// ==== Notificaciones ====

func (m *Mongo) InsertarNotificacion(ctx context.Context, notificacion *models.Notificacion) error {
	notificacion.ID = primitive.NewObjectID()
	_, err := m.bd.Collection(colNotificaciones).InsertOne(ctx, notificacion)
	if err != nil {
		return fmt.Errorf("error al insertar la notificación: %v", err)
	}
	return nil
}

func (m *Mongo) NotificacionesDeUsuario(ctx context.Context, usuarioID string) ([]models.Notificacion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: -1}})
	cursor, err := m.bd.Collection(colNotificaciones).Find(ctx, bson.M{"usuarioId": usuarioID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error al buscar notificaciones: %v", err)
	}
	defer cursor.Close(ctx)

	notificaciones := []models.Notificacion{}
	if err := cursor.All(ctx, &notificaciones); err != nil {
		return nil, fmt.Errorf("error al decodificar notificaciones: %v", err)
	}
	return notificaciones, nil
}

func (m *Mongo) ObtenerNotificacion(ctx context.Context, id string) (*models.Notificacion, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var notificacion models.Notificacion
	err = m.bd.Collection(colNotificaciones).FindOne(ctx, bson.M{"_id": objectID}).Decode(&notificacion)
	if err != nil {
		return nil, err
	}
	return &notificacion, nil
}

func (m *Mongo) MarcarNotificacionLeida(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	resultado, err := m.bd.Collection(colNotificaciones).UpdateOne(ctx,
		bson.M{"_id": objectID}, bson.M{"$set": bson.M{"leido": true}})
	if err != nil {
		return fmt.Errorf("error al marcar la notificación como leída: %v", err)
	}
	if resultado.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ==== Usuarios ====

func (m *Mongo) GuardarUsuario(ctx context.Context, usuario *models.Usuario) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.bd.Collection(colUsuarios).ReplaceOne(ctx, bson.M{"_id": usuario.ID}, usuario, opts)
	if err != nil {
		return fmt.Errorf("error al guardar el usuario: %v", err)
	}
	return nil
}

func (m *Mongo) ObtenerUsuario(ctx context.Context, uid string) (*models.Usuario, error) {
	var usuario models.Usuario
	err := m.bd.Collection(colUsuarios).FindOne(ctx, bson.M{"_id": uid}).Decode(&usuario)
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (m *Mongo) BuscarUsuariosPorRol(ctx context.Context, rol string) ([]models.Usuario, error) {
	cursor, err := m.bd.Collection(colUsuarios).Find(ctx, bson.M{"rol": rol})
	if err != nil {
		return nil, fmt.Errorf("error al buscar usuarios: %v", err)
	}
	defer cursor.Close(ctx)

	usuarios := []models.Usuario{}
	if err := cursor.All(ctx, &usuarios); err != nil {
		return nil, fmt.Errorf("error al decodificar usuarios: %v", err)
	}
	return usuarios, nil
}

// ==== Pacientes ====

// GuardarPaciente crea o actualiza el paciente usando el NSS como _id,
// igual que el upsert con merge del sistema original.
func (m *Mongo) GuardarPaciente(ctx context.Context, paciente *models.Paciente) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.bd.Collection(colPacientes).ReplaceOne(ctx, bson.M{"_id": paciente.NSS}, paciente, opts)
	if err != nil {
		return fmt.Errorf("error al guardar el paciente: %v", err)
	}
	return nil
}

func (m *Mongo) ObtenerPaciente(ctx context.Context, nss string) (*models.Paciente, error) {
	var paciente models.Paciente
	err := m.bd.Collection(colPacientes).FindOne(ctx, bson.M{"_id": nss}).Decode(&paciente)
	if err != nil {
		return nil, err
	}
	return &paciente, nil
}

func (m *Mongo) ListarPacientes(ctx context.Context) ([]models.Paciente, error) {
	cursor, err := m.bd.Collection(colPacientes).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error al buscar pacientes: %v", err)
	}
	defer cursor.Close(ctx)

	pacientes := []models.Paciente{}
	if err := cursor.All(ctx, &pacientes); err != nil {
		return nil, fmt.Errorf("error al decodificar pacientes: %v", err)
	}
	return pacientes, nil
}

// EliminarPacienteEnLote borra el paciente, sus casos y los comentarios de
// esos casos como una sola operación atómica. Los archivos en el almacén
// de objetos se eliminan antes, fuera del lote, porque son best-effort.
func (m *Mongo) EliminarPacienteEnLote(ctx context.Context, nss string, casoIDs []string) error {
	objectIDs := make([]primitive.ObjectID, 0, len(casoIDs))
	for _, id := range casoIDs {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	return m.enTransaccion(ctx, func(sc mongo.SessionContext) error {
		if len(objectIDs) > 0 {
			if _, err := m.bd.Collection(colComentarios).DeleteMany(sc, bson.M{"casoId": bson.M{"$in": objectIDs}}); err != nil {
				return fmt.Errorf("error al eliminar comentarios del paciente %s: %v", nss, err)
			}
			if _, err := m.bd.Collection(colCasos).DeleteMany(sc, bson.M{"_id": bson.M{"$in": objectIDs}}); err != nil {
				return fmt.Errorf("error al eliminar casos del paciente %s: %v", nss, err)
			}
		}
		if _, err := m.bd.Collection(colPacientes).DeleteOne(sc, bson.M{"_id": nss}); err != nil {
			return fmt.Errorf("error al eliminar el paciente %s: %v", nss, err)
		}
		return nil
	})
}

// enTransaccion ejecuta fn dentro de una transacción: o todas las
// escrituras se confirman o ninguna.
func (m *Mongo) enTransaccion(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sesion, err := m.cliente.StartSession()
	if err != nil {
		return fmt.Errorf("error al iniciar la sesión: %v", err)
	}
	defer sesion.EndSession(ctx)

	_, err = sesion.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
