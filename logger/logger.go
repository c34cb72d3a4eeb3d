package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Nuevo crea el logger de la aplicación. Escribe siempre a stdout y,
// si se indica un archivo, también a disco con rotación.
func Nuevo(nivel, archivo string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(nivel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if archivo != "" {
		rotador := &lumberjack.Logger{
			Filename:   archivo,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // días
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotador))
	}

	return log
}
