// Package tareas ejecuta trabajos en segundo plano desacoplados del ciclo
// petición/respuesta: la tarea se encola y el llamador no espera por ella.
package tareas

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type tarea struct {
	nombre string
	fn     func(ctx context.Context)
}

// Runner es un pool fijo de workers sobre un canal con buffer. No hay
// reintentos ni señal de terminación visible para el llamador; un pánico
// dentro de una tarea se registra y el worker sigue vivo.
type Runner struct {
	ctx     context.Context
	cancela context.CancelFunc
	cola    chan tarea
	wg      sync.WaitGroup
	log     *logrus.Logger
}

// NuevoRunner arranca el pool con el número de workers indicado.
func NuevoRunner(workers, tamanoCola int, log *logrus.Logger) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if tamanoCola <= 0 {
		tamanoCola = 64
	}

	ctx, cancela := context.WithCancel(context.Background())
	r := &Runner{
		ctx:     ctx,
		cancela: cancela,
		cola:    make(chan tarea, tamanoCola),
		log:     log,
	}

	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.trabajar()
	}

	return r
}

// Encolar entrega una tarea para ejecución en segundo plano. Si la cola
// está llena la entrega bloquea; el runner no descarta trabajos.
func (r *Runner) Encolar(nombre string, fn func(ctx context.Context)) {
	select {
	case r.cola <- tarea{nombre: nombre, fn: fn}:
	case <-r.ctx.Done():
		r.log.Warnf("Runner detenido, tarea %s descartada", nombre)
	}
}

func (r *Runner) trabajar() {
	defer r.wg.Done()
	for {
		select {
		case t := <-r.cola:
			r.ejecutar(t)
		case <-r.ctx.Done():
			// Drenar lo que quede encolado antes de salir.
			for {
				select {
				case t := <-r.cola:
					r.ejecutar(t)
				default:
					return
				}
			}
		}
	}
}

func (r *Runner) ejecutar(t tarea) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorf("Pánico en la tarea %s: %v", t.nombre, p)
		}
	}()
	t.fn(r.ctx)
}

// Detener deja de aceptar tareas nuevas y espera a que los workers
// terminen las pendientes.
func (r *Runner) Detener() {
	r.cancela()
	r.wg.Wait()
}
