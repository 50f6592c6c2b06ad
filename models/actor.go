package models

import "timber-portal/types"

// Actor is the authorization view of the logged-in user, consulted by every
// mutating repository operation. A super-admin may read across
// organisations, but mutation of stock always stays organisation-scoped, so
// CanMutate never passes for a caller from another organisation.
type Actor struct {
	UserID         uint
	Role           string
	OrganisationID types.SnowflakeID
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

func (a Actor) IsOrgAdmin() bool {
	return a.Role == RoleOrgAdmin
}

func (a Actor) IsProducer() bool {
	return a.Role == RoleProducer
}

// CanView reports whether the actor may read resources of the organisation.
func (a Actor) CanView(orgID types.SnowflakeID) bool {
	if a.IsSuperAdmin() {
		return true
	}
	return a.OrganisationID != 0 && a.OrganisationID == orgID
}

// CanMutate reports whether the actor may change resources of the organisation.
func (a Actor) CanMutate(orgID types.SnowflakeID) bool {
	if a.Role != RoleProducer && a.Role != RoleOrgAdmin {
		return false
	}
	return a.OrganisationID != 0 && a.OrganisationID == orgID
}

// CanProduce reports whether the actor may edit production drafts of the organisation.
func (a Actor) CanProduce(orgID types.SnowflakeID) bool {
	return a.IsProducer() && a.OrganisationID == orgID && orgID != 0
}
