// Package topic contiene los controllers del aggregate topic.
package topic

import (
	svc "github.com/dropDatabas3/agora/internal/http/services/topic"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controllers agrupa todos los controllers del dominio topic.
type Controllers struct {
	Membership *MembershipController
	Manage     *ManageController
	Read       *ReadController
}

// NewControllers crea el agregador de controllers topic.
func NewControllers(membership svc.MembershipService, manage svc.ManageService, read svc.ReadService) *Controllers {
	return &Controllers{
		Membership: NewMembershipController(membership),
		Manage:     NewManageController(manage),
		Read:       NewReadController(read),
	}
}
