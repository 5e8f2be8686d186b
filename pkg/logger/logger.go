package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string    // development -> consola legible; otro valor -> JSON
	Level   string    // trace, debug, info, warn, error
	Service string    // se agrega como campo "service" a cada evento
	Out     io.Writer // nil -> stdout
}

// Logger envuelve zerolog con los campos del libro de inventario.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger raíz y lo instala como logger global de zerolog.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).Level(levelOf(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()
	log.Logger = zl
	return &Logger{zl: zl}
}

func levelOf(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Store sublogger con store_id fijo. Vacío devuelve el mismo logger.
func (l *Logger) Store(storeID string) *Logger {
	if storeID == "" {
		return l
	}
	return &Logger{zl: l.zl.With().Str("store_id", storeID).Logger()}
}

// Position sublogger para una posición tienda+variante.
func (l *Logger) Position(storeID, variantID string) *Logger {
	return &Logger{zl: l.zl.With().Str("store_id", storeID).Str("variant_id", variantID).Logger()}
}

// Document sublogger para un documento (factura, devolución, orden, traslado).
func (l *Logger) Document(kind, id string) *Logger {
	return &Logger{zl: l.zl.With().Str("doc_type", kind).Str("doc_id", id).Logger()}
}

// Nop descarta todo (tests y herramientas).
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}
