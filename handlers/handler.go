package handlers

import (
	"github.com/uptrace/bun"

	"github.com/eamonmason/kwcc-tdz/tour"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db     *bun.DB
	JWTKey []byte
	Tour   *tour.Config
}

// New creates a Handler with the given database connection, JWT signing
// key and tour configuration.
func New(db *bun.DB, jwtKey []byte, tc *tour.Config) *Handler {
	return &Handler{db: db, JWTKey: jwtKey, Tour: tc}
}
