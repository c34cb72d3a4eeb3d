package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config reúne toda la configuración de la plataforma, leída desde
// variables de entorno (con soporte de archivo .env en desarrollo).
type Config struct {
	Puerto  string
	BaseURL string

	MongoURI string
	MongoBD  string

	SMTPServer   string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string

	IAServiceURL string

	FirebaseProjectID    string
	FirebaseCredenciales string

	AllowedOrigins []string

	LogNivel   string
	LogArchivo string
}

// Cargar lee la configuración desde el entorno. El archivo .env es
// opcional; en producción las variables llegan por el entorno del proceso.
func Cargar() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Puerto:               valorODefecto("PORT", "8080"),
		BaseURL:              valorODefecto("BASE_URL", "http://localhost:8080"),
		MongoURI:             valorODefecto("MONGO_URI", "mongodb://localhost:27017"),
		MongoBD:              valorODefecto("MONGO_DB", "plataformaclinica"),
		SMTPServer:           os.Getenv("SMTP_SERVER"),
		SMTPEmail:            os.Getenv("SMTP_EMAIL"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		IAServiceURL:         valorODefecto("IA_SERVICE_URL", "http://localhost:8000"),
		FirebaseProjectID:    os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredenciales: valorODefecto("FIREBASE_CREDENTIALS", "firebase-service-account.json"),
		LogNivel:             valorODefecto("LOG_LEVEL", "info"),
		LogArchivo:           os.Getenv("LOG_FILE"),
	}

	// El microservicio de IA puede venir configurado sin esquema.
	if !strings.HasPrefix(cfg.IAServiceURL, "http") {
		cfg.IAServiceURL = "https://" + cfg.IAServiceURL
	}

	puerto := valorODefecto("SMTP_PORT", "587")
	p, err := strconv.Atoi(puerto)
	if err != nil {
		return nil, fmt.Errorf("error al convertir el puerto SMTP: %v", err)
	}
	cfg.SMTPPort = p

	if origenes := os.Getenv("ALLOWED_ORIGINS"); origenes != "" {
		cfg.AllowedOrigins = strings.Split(origenes, ",")
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3001"}
	}

	return cfg, nil
}

func valorODefecto(clave, defecto string) string {
	if v := os.Getenv(clave); v != "" {
		return v
	}
	return defecto
}
