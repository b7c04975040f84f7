// Package cache define la capa de read-cache para aggregates de la
// plataforma (channels, topics, listas de members, perfiles).
//
// Contrato: los errores del backend nunca se propagan al request path.
// Un Get que falla es un miss; un Set/Delete que falla se loguea y se
// descarta. El read path siempre puede caer al store autoritativo y la
// staleness queda acotada por el TTL de cada clase de entrada.
package cache

import (
	"context"
	"time"
)

// Clases de TTL. Las listas "created by owner" cambian menos que los
// aggregates individuales y sus listas de members.
const (
	TTLAggregate = 3600 * time.Second
	TTLList      = 7200 * time.Second
)

// Cache es el contrato mínimo del cache store.
type Cache interface {
	// Get retorna el valor o (nil, false) en miss. Un error del backend
	// cuenta como miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set guarda un valor con TTL. Best-effort: un fallo se loguea.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete elimina claves. Borrar una clave ausente es un no-op.
	// Retorna error sólo para que el consumer pueda loguear por clave;
	// nunca debe abortar un batch.
	Delete(ctx context.Context, keys ...string) error
}
