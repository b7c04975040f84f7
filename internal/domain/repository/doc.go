// Package repository define los modelos de dominio y los contratos de
// persistencia de la plataforma (channels, topics, memberships, invites,
// users).
//
// Las interfaces son deliberadamente angostas: GetByID / FindOne-style
// lookups / Create / Update / Delete. El store autoritativo es un document
// store; toda la seguridad de mutación se apoya en sus primitivas atómicas
// de single-document update (no hay locking client-side).
package repository
