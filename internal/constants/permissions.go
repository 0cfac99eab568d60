package constants

const (
	ViewData        = "view_data"
	CreateSale      = "create_sale"
	ParticipateSale = "participate_sale"
	ForceCloseSale  = "force_close_sale"
	ListLicense     = "list_license"
	PurchaseLicense = "purchase_license"
	CancelListing   = "cancel_listing"
	WithdrawEscrow  = "withdraw_escrow"
	SetListingFee   = "set_listing_fee"
	ApproveSpend    = "approve_spend"
	MintToken       = "mint_token"
	AssignRole      = "assign_role"
)
