package almacen

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"plataformaclinica/servicios"
)

// ArchivosGridFS implementa el almacén de objetos sobre GridFS. Cada
// archivo se identifica por su ruta de subida (uploadPath), que se usa
// como filename del bucket.
type ArchivosGridFS struct {
	bucket *gridfs.Bucket
}

var _ servicios.ArchivosStore = (*ArchivosGridFS)(nil)

func NuevoArchivosGridFS(bucket *gridfs.Bucket) *ArchivosGridFS {
	return &ArchivosGridFS{bucket: bucket}
}

// Subir guarda el contenido bajo la ruta indicada.
func (a *ArchivosGridFS) Subir(ctx context.Context, path string, contenido io.Reader) error {
	_, err := a.bucket.UploadFromStream(path, contenido)
	if err != nil {
		return fmt.Errorf("error al subir el archivo %s: %v", path, err)
	}
	return nil
}

// Abrir devuelve un lector del archivo guardado bajo la ruta indicada.
func (a *ArchivosGridFS) Abrir(ctx context.Context, path string) (io.ReadCloser, error) {
	downloadStream, err := a.bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error al abrir el archivo %s: %v", path, err)
	}
	return downloadStream, nil
}

// Eliminar borra el archivo guardado bajo la ruta indicada. Un archivo
// inexistente no es un error: la eliminación de archivos es best-effort.
func (a *ArchivosGridFS) Eliminar(ctx context.Context, path string) error {
	cursor, err := a.bucket.Find(bson.M{"filename": path})
	if err != nil {
		return fmt.Errorf("error al buscar el archivo %s: %v", path, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var archivo struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&archivo); err != nil {
			return fmt.Errorf("error al decodificar el archivo %s: %v", path, err)
		}
		if err := a.bucket.Delete(archivo.ID); err != nil && err != gridfs.ErrFileNotFound {
			return fmt.Errorf("error al eliminar el archivo %s: %v", path, err)
		}
	}
	return nil
}
