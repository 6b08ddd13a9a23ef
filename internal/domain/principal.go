package domain

// Principal is the authenticated caller of a request. Role is read from the
// live account record, never from the token.
type Principal struct {
	UserID string
	Role   string
}

// IsSuperAdmin reports whether the principal may manage other accounts.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}
