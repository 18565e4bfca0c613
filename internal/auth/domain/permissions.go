package domain

// Permission catalogue. Every name here is seeded by migration; additional
// permissions can be created at runtime through the admin API.
const (
	PermGetAllUsers         = "GET_ALL_USERS"
	PermGetLoggedInUser     = "GET_LOGGED_IN_USER"
	PermUpdateCurrentUser   = "UPDATE_CURRENT_USER"
	PermDeleteCurrentUser   = "DELETE_CURRENT_USER"
	PermChangePassword      = "CHANGE_PASSWORD"
	PermCreateRole          = "CREATE_ROLE"
	PermUpdateRole          = "UPDATE_ROLE"
	PermDeleteRole          = "DELETE_ROLE"
	PermGetRoles            = "GET_ROLES"
	PermCreatePermission    = "CREATE_PERMISSION"
	PermUpdatePermission    = "UPDATE_PERMISSION"
	PermDeletePermission    = "DELETE_PERMISSION"
	PermGetPermissions      = "GET_PERMISSIONS"
	PermGetPermission       = "GET_PERMISSION"
	PermAddCoins            = "ADD_COINS"
	PermGetAllCoins         = "GET_ALL_COINS"
	PermAddMarketData       = "ADD_MARKET_DATA"
	PermGetMarketData       = "GET_MARKET_DATA"
	PermGetMarketDataByCoin = "GET_MARKET_DATA_BY_COIN"
)
