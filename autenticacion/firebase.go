// Package autenticacion integra el proveedor de identidad externo
// (Firebase): verificación de tokens y alta de cuentas.
package autenticacion

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"plataformaclinica/servicios"
)

// Firebase envuelve el SDK de administración de Firebase.
type Firebase struct {
	app  *firebase.App
	auth *auth.Client
}

var _ servicios.ProveedorIdentidad = (*Firebase)(nil)

// NuevoFirebase inicializa el SDK con el archivo de credenciales de la
// cuenta de servicio.
func NuevoFirebase(ctx context.Context, projectID, credencialesPath string) (*Firebase, error) {
	if _, err := os.Stat(credencialesPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no se encontró el archivo de credenciales de Firebase: %s", credencialesPath)
	}

	opt := option.WithCredentialsFile(credencialesPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("error al inicializar Firebase: %v", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error al obtener el cliente de Firebase Auth: %v", err)
	}

	return &Firebase{app: app, auth: authClient}, nil
}

// VerificarToken valida un ID token emitido por Firebase y devuelve el
// UID del usuario.
func (f *Firebase) VerificarToken(ctx context.Context, idToken string) (string, error) {
	token, err := f.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("token inválido: %v", err)
	}
	return token.UID, nil
}

// CrearCuenta da de alta una cuenta en Firebase Authentication.
func (f *Firebase) CrearCuenta(ctx context.Context, email, contrasena, nombreCompleto string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(contrasena).
		DisplayName(nombreCompleto)

	usuario, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", servicios.ErrEmailEnUso
		}
		return "", fmt.Errorf("error al crear la cuenta: %v", err)
	}
	return usuario.UID, nil
}
