package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"plataformaclinica/almacen"
	"plataformaclinica/autenticacion"
	"plataformaclinica/config"
	"plataformaclinica/handlers"
	"plataformaclinica/logger"
	"plataformaclinica/middleware"
	"plataformaclinica/servicios"
	"plataformaclinica/tareas"
)

func main() {
	cfg, err := config.Cargar()
	if err != nil {
		panic(err)
	}

	log := logger.Nuevo(cfg.LogNivel, cfg.LogArchivo)

	ctx, cancelar := context.WithTimeout(context.Background(), 15*time.Second)
	bd, bucket, err := almacen.Conectar(ctx, cfg.MongoURI, cfg.MongoBD, log)
	cancelar()
	if err != nil {
		log.Fatalf("Error al conectar con MongoDB: %v", err)
	}
	defer bd.Desconectar(context.Background())

	firebase, err := autenticacion.NuevoFirebase(context.Background(), cfg.FirebaseProjectID, cfg.FirebaseCredenciales)
	if err != nil {
		log.Fatalf("Error al inicializar Firebase: %v", err)
	}

	archivos := almacen.NuevoArchivosGridFS(bucket)
	correo := servicios.NuevoCorreoSMTP(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	ia := servicios.NuevoClienteIA(cfg.IAServiceURL)

	runner := tareas.NuevoRunner(4, 64, log)
	defer runner.Detener()

	notificaciones := servicios.NuevoServicioNotificaciones(bd, correo, log)
	casos := servicios.NuevoServicioCasos(bd, archivos, notificaciones, ia, runner, log)
	usuarios := servicios.NuevoServicioUsuarios(bd, firebase, log)
	pacientes := servicios.NuevoServicioPacientes(bd, archivos, log)
	reportes := servicios.NuevoServicioReportes(bd)

	hCasos := handlers.NuevoHandlerCasos(casos, log)
	hNotificaciones := handlers.NuevoHandlerNotificaciones(notificaciones, log)
	hUsuarios := handlers.NuevoHandlerUsuarios(usuarios, log)
	hPacientes := handlers.NuevoHandlerPacientes(pacientes, log)
	hReportes := handlers.NuevoHandlerReportes(reportes, log)
	hArchivos := handlers.NuevoHandlerArchivos(archivos, cfg.BaseURL, log)

	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	autenticado := middleware.Autenticacion(firebase, usuarios, log)

	// Rutas públicas. Van primero porque el subrouter protegido captura
	// todo /api y no deja pasar lo que no reconoce.
	r.HandleFunc("/api/users/register", hUsuarios.Registrar).Methods("POST")
	r.HandleFunc("/api/users/doctors", hUsuarios.Doctores).Methods("GET")
	r.HandleFunc("/api/users/{uid}", hUsuarios.Obtener).Methods("GET")

	r.HandleFunc("/api/pacientes", hPacientes.Guardar).Methods("POST")
	r.HandleFunc("/api/pacientes/search", hPacientes.Buscar).Methods("GET")
	r.HandleFunc("/api/pacientes/{nss}", hPacientes.Obtener).Methods("GET")
	r.HandleFunc("/api/pacientes/{nss}", hPacientes.Eliminar).Methods("DELETE")

	// La descarga acepta rutas con "/" dentro del uploadPath.
	r.HandleFunc("/api/archivos/{path:.+}", hArchivos.Descargar).Methods("GET")

	// Rutas protegidas: exigen un token de Firebase válido.
	protegido := r.PathPrefix("/api").Subrouter()
	protegido.Use(autenticado)

	protegido.HandleFunc("/casos", hCasos.Crear).Methods("POST")
	protegido.HandleFunc("/casos", hCasos.Listar).Methods("GET")
	protegido.HandleFunc("/casos/{id}", hCasos.Obtener).Methods("GET")
	protegido.HandleFunc("/casos/{id}", hCasos.Actualizar).Methods("PATCH")
	protegido.HandleFunc("/casos/{id}", hCasos.Eliminar).Methods("DELETE")
	protegido.HandleFunc("/casos/{id}/comentarios", hCasos.Comentarios).Methods("GET")
	protegido.HandleFunc("/casos/{id}/comentarios", hCasos.AgregarComentario).Methods("POST")
	protegido.HandleFunc("/casos/{id}/cerrar", hCasos.Cerrar).Methods("PATCH")

	protegido.HandleFunc("/notificaciones", hNotificaciones.Listar).Methods("GET")
	protegido.HandleFunc("/notificaciones/{id}/leida", hNotificaciones.MarcarLeida).Methods("PATCH")

	protegido.HandleFunc("/reports/{id}/generate", hReportes.Generar).Methods("GET")
	protegido.HandleFunc("/archivos", hArchivos.Subir).Methods("POST")

	corsHandler := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	servidor := &http.Server{
		Addr:         ":" + cfg.Puerto,
		Handler:      corsHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Infof("Servidor escuchando en el puerto %s...", cfg.Puerto)
		if err := servidor.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error del servidor: %v", err)
		}
	}()

	// Apagado ordenado: se drenan las tareas pendientes antes de salir.
	senales := make(chan os.Signal, 1)
	signal.Notify(senales, syscall.SIGINT, syscall.SIGTERM)
	<-senales

	log.Info("Apagando el servidor...")
	ctxApagado, cancelarApagado := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelarApagado()
	if err := servidor.Shutdown(ctxApagado); err != nil {
		log.Errorf("Error en el apagado del servidor: %v", err)
	}
}
