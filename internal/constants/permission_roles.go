package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
// Route middleware consults this table; ownership checks (a sale's provider,
// a listing's seller) stay inside the services.
var PermissionRoles = map[string][]string{
	ViewData:        {Viewer, Trader, Provider, Admin},
	CreateSale:      {Provider, Admin},
	ParticipateSale: {Trader, Provider, Admin},
	ForceCloseSale:  {Provider, Admin},
	ListLicense:     {Trader, Provider, Admin},
	PurchaseLicense: {Trader, Provider, Admin},
	CancelListing:   {Trader, Provider, Admin},
	WithdrawEscrow:  {Trader, Provider, Admin},
	SetListingFee:   {Admin},
	ApproveSpend:    {Trader, Provider, Admin},
	MintToken:       {Admin},
	AssignRole:      {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
