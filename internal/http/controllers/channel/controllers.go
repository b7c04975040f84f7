// Package channel contiene los controllers del aggregate channel.
package channel

import (
	svc "github.com/dropDatabas3/agora/internal/http/services/channel"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controllers agrupa todos los controllers del dominio channel.
type Controllers struct {
	Membership *MembershipController
	Manage     *ManageController
	Read       *ReadController
}

// NewControllers crea el agregador de controllers channel.
func NewControllers(membership svc.MembershipService, manage svc.ManageService, read svc.ReadService) *Controllers {
	return &Controllers{
		Membership: NewMembershipController(membership),
		Manage:     NewManageController(manage),
		Read:       NewReadController(read),
	}
}
